package rpc

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

var (
	DialTimeout = 10 * time.Second

	retryAttempts  = 5
	retryBaseDelay = 500 * time.Millisecond
)

// Fragments of provider error text worth retrying. Anything else (reverts,
// missing blocks, bad params) fails immediately.
var retryableFragments = []string{
	"rate", "limit", "429", "too many",
	"timeout", "timed out", "connection",
	"temporarily", "unavailable",
	"502", "503", "504",
}

// Client is a read-only connection to an Ethereum JSON-RPC endpoint.
type Client struct {
	eth     *ethclient.Client
	raw     *gethrpc.Client
	chainID *big.Int
	signer  types.Signer
}

// Dial connects to url and verifies the endpoint by fetching its chain ID.
func Dial(ctx context.Context, url string) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	raw, err := gethrpc.DialContext(dialCtx, url)
	if err != nil {
		return nil, err
	}
	eth := ethclient.NewClient(raw)

	chainID, err := eth.ChainID(dialCtx)
	if err != nil {
		raw.Close()
		return nil, err
	}

	return &Client{
		eth:     eth,
		raw:     raw,
		chainID: chainID,
		signer:  types.LatestSignerForChainID(chainID),
	}, nil
}

func (c *Client) Close() {
	c.raw.Close()
}

// ChainID reports the chain ID fetched at dial time.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// withRetry runs fn up to retryAttempts times, doubling the delay between
// attempts. Only transient provider errors are retried.
func withRetry(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range retryableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
