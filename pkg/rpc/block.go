package rpc

import (
	"context"
	"math/big"

	"evmex/pkg/decode"
	"evmex/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"
)

var receiptConcurrency = 8

// GetBlock fetches a block by number (nil means latest) along with its
// transaction summaries and aggregate stats.
func (c *Client) GetBlock(ctx context.Context, number *big.Int) (*models.BlockData, error) {
	var block *types.Block
	err := withRetry(ctx, func() error {
		var err error
		block, err = c.eth.BlockByNumber(ctx, number)
		return err
	})
	if err != nil {
		return nil, err
	}

	txs, stats, err := c.GetBlockTransactions(ctx, block)
	if err != nil {
		return nil, err
	}

	return &models.BlockData{
		Info:  c.blockInfo(ctx, block),
		Txs:   txs,
		Stats: stats,
	}, nil
}

// GetBlockTransactions builds the transaction rows and block stats from the
// block body plus its receipts, fetched in parallel.
func (c *Client) GetBlockTransactions(ctx context.Context, block *types.Block) ([]models.TxSummary, models.BlockStats, error) {
	txs := block.Transactions()
	receipts := make([]*types.Receipt, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(receiptConcurrency)
	for i, tx := range txs {
		g.Go(func() error {
			return withRetry(gctx, func() error {
				var err error
				receipts[i], err = c.eth.TransactionReceipt(gctx, tx.Hash())
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, models.BlockStats{}, err
	}

	stats := models.BlockStats{
		TotalValue: new(big.Int),
		TotalFees:  new(big.Int),
		BurntFees:  new(big.Int),
	}
	summaries := make([]models.TxSummary, 0, len(txs))
	baseFee := block.BaseFee()

	for i, tx := range txs {
		receipt := receipts[i]
		from, _ := types.Sender(c.signer, tx)
		summaries = append(summaries, models.TxSummary{
			Hash:    tx.Hash(),
			From:    from,
			To:      tx.To(),
			Value:   tx.Value(),
			GasUsed: receipt.GasUsed,
		})

		stats.TotalValue.Add(stats.TotalValue, tx.Value())
		gasUsed := new(big.Int).SetUint64(receipt.GasUsed)
		if receipt.EffectiveGasPrice != nil {
			stats.TotalFees.Add(stats.TotalFees, new(big.Int).Mul(gasUsed, receipt.EffectiveGasPrice))
		}
		if baseFee != nil {
			stats.BurntFees.Add(stats.BurntFees, new(big.Int).Mul(gasUsed, baseFee))
		}
		if tx.Type() == types.BlobTxType {
			stats.BlobTxCount++
		}
	}
	return summaries, stats, nil
}

// GetHead fetches the latest block header only, skipping transactions
// and receipts.
func (c *Client) GetHead(ctx context.Context) (*models.BlockInfo, error) {
	var header *types.Header
	err := withRetry(ctx, func() error {
		var err error
		header, err = c.eth.HeaderByNumber(ctx, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	info := c.headerInfo(ctx, header)
	return &info, nil
}

func (c *Client) headerInfo(ctx context.Context, header *types.Header) models.BlockInfo {
	info := models.BlockInfo{
		Number:     header.Number.Uint64(),
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
		Timestamp:  header.Time,
		Miner:      header.Coinbase,
		GasUsed:    header.GasUsed,
		GasLimit:   header.GasLimit,
		BaseFee:    header.BaseFee,
		ExtraData:  header.Extra,
		BuilderTag: decode.BuilderTag(header.Extra, header.Coinbase),
	}
	if header.BlobGasUsed != nil {
		v := *header.BlobGasUsed
		info.BlobGasUsed = &v
	}
	if names, err := c.LookupEnsNames(ctx, []common.Address{header.Coinbase}); err == nil && len(names) == 1 {
		info.MinerENS = names[0]
	}
	return info
}

func (c *Client) blockInfo(ctx context.Context, block *types.Block) models.BlockInfo {
	info := c.headerInfo(ctx, block.Header())
	info.TxCount = len(block.Transactions())
	info.WithdrawalsCount = len(block.Withdrawals())
	return info
}
