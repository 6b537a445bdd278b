package rpc

import (
	"context"
	"math/big"

	"evmex/pkg/models"

	"github.com/ethereum/go-ethereum"
	"golang.org/x/sync/errgroup"
)

var feeHistoryBlocks = uint64(5)

// GetNetworkInfo fetches the data behind the home screen's network panel.
// Client version and fee history are decoration and fail soft.
func (c *Client) GetNetworkInfo(ctx context.Context) (*models.NetworkInfo, error) {
	info := &models.NetworkInfo{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withRetry(gctx, func() error {
			var err error
			info.LatestBlock, err = c.eth.BlockNumber(gctx)
			return err
		})
	})
	g.Go(func() error {
		return withRetry(gctx, func() error {
			var err error
			info.GasPrice, err = c.eth.SuggestGasPrice(gctx)
			return err
		})
	})
	g.Go(func() error {
		// Not every provider exposes web3_clientVersion.
		var version string
		if err := c.raw.CallContext(gctx, &version, "web3_clientVersion"); err == nil {
			info.ClientVersion = version
		}
		return nil
	})
	g.Go(func() error {
		var hist *ethereum.FeeHistory
		err := withRetry(gctx, func() error {
			var err error
			hist, err = c.eth.FeeHistory(gctx, feeHistoryBlocks, nil, []float64{25, 50, 75})
			return err
		})
		if err == nil {
			applyFeeHistory(info, hist)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return info, nil
}

func applyFeeHistory(info *models.NetworkInfo, hist *ethereum.FeeHistory) {
	for _, fee := range hist.BaseFee {
		info.BaseFeeTrend = append(info.BaseFeeTrend, gweiFloat(fee))
	}

	var sums [3]float64
	var n int
	for _, row := range hist.Reward {
		if len(row) < 3 {
			continue
		}
		for i := 0; i < 3; i++ {
			sums[i] += gweiFloat(row[i])
		}
		n++
	}
	if n > 0 {
		for i := 0; i < 3; i++ {
			info.PriorityFees[i] = sums[i] / float64(n)
		}
	}
}

func gweiFloat(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e9))
	v, _ := f.Float64()
	return v
}
