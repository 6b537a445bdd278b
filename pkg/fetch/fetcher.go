package fetch

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"evmex/pkg/models"
	"evmex/pkg/nav"
	"evmex/pkg/query"

	"github.com/ethereum/go-ethereum/common"
)

var NetworkPollInterval = 12 * time.Second

// DataSource defines the read API the fetcher drives. The rpc client
// implements it.
type DataSource interface {
	GetBlock(ctx context.Context, number *big.Int) (*models.BlockData, error)
	GetTransaction(ctx context.Context, hash common.Hash) (*models.TxInfo, error)
	GetAddress(ctx context.Context, addr common.Address) (*models.AddressInfo, error)
	GetNetworkInfo(ctx context.Context) (*models.NetworkInfo, error)
	ResolveEns(ctx context.Context, name string) (common.Address, error)
}

// Fetcher runs queries against a DataSource in the background and broadcasts
// results to subscribers. Every submitted query gets a sequence number so the
// UI can drop results that arrive after a newer submission.
type Fetcher struct {
	source      DataSource
	subscribers []Subscriber
	mu          sync.RWMutex
	seq         atomic.Uint64
	stopChan    chan struct{}
}

// New creates a Fetcher reading from source.
func New(source DataSource) *Fetcher {
	return &Fetcher{
		source:   source,
		stopChan: make(chan struct{}),
	}
}

// Subscribe adds a new subscriber and returns a channel to receive results.
func (f *Fetcher) Subscribe() Subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(Subscriber, 100)
	f.subscribers = append(f.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (f *Fetcher) Unsubscribe(ch Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sub := range f.subscribers {
		if sub == ch {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Stop ends the background network loop.
func (f *Fetcher) Stop() {
	close(f.stopChan)
}

func (f *Fetcher) publish(r Result) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, sub := range f.subscribers {
		select {
		case sub <- r:
		default:
			// Subscriber is slow, skip.
		}
	}
}

// Submit classifies raw operator input and spawns the fetch. Invalid input
// returns seq 0 without spawning anything; the caller surfaces the rejection.
func (f *Fetcher) Submit(ctx context.Context, raw string) (uint64, query.Intent) {
	intent := query.Classify(raw)
	if intent.Kind == query.KindInvalid {
		return 0, intent
	}
	seq := f.seq.Add(1)
	go f.fetch(ctx, seq, raw, intent)
	return seq, intent
}

// SubmitLink fetches the target of a navigation link.
func (f *Fetcher) SubmitLink(ctx context.Context, link nav.NavLink) uint64 {
	var raw string
	var intent query.Intent
	switch link.Kind {
	case nav.LinkTransaction:
		raw = link.TxHash.Hex()
		intent = query.Intent{Kind: query.KindTxHash, TxHash: link.TxHash}
	case nav.LinkBlock:
		raw = strconv.FormatUint(link.BlockNumber, 10)
		intent = query.Intent{Kind: query.KindBlockNumber, BlockNumber: link.BlockNumber}
	default:
		raw = link.Address.Hex()
		intent = query.Intent{Kind: query.KindAddress, Address: link.Address}
	}
	seq := f.seq.Add(1)
	go f.fetch(ctx, seq, raw, intent)
	return seq
}

func (f *Fetcher) fetch(ctx context.Context, seq uint64, raw string, intent query.Intent) {
	res := Result{Seq: seq, Query: raw, Kind: intent.Kind}

	switch intent.Kind {
	case query.KindAddress:
		res.Address, res.Err = f.source.GetAddress(ctx, intent.Address)
	case query.KindTxHash:
		res.Tx, res.Err = f.source.GetTransaction(ctx, intent.TxHash)
	case query.KindBlockNumber:
		res.Block, res.Err = f.source.GetBlock(ctx, new(big.Int).SetUint64(intent.BlockNumber))
	case query.KindEnsName:
		addr, err := f.source.ResolveEns(ctx, intent.EnsName)
		if err != nil {
			res.Err = err
			break
		}
		res.Address, res.Err = f.source.GetAddress(ctx, addr)
	}

	if res.Err != nil {
		res.Err = fmt.Errorf("fetch %s: %w", intent.Kind, res.Err)
	}
	f.publish(res)
}

// StartNetworkLoop fetches network info immediately and then on every tick
// until the context is done or the fetcher is stopped.
func (f *Fetcher) StartNetworkLoop(ctx context.Context) {
	go f.networkLoop(ctx)
}

func (f *Fetcher) networkLoop(ctx context.Context) {
	f.fetchNetwork(ctx)

	ticker := time.NewTicker(NetworkPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.fetchNetwork(ctx)
		case <-f.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (f *Fetcher) fetchNetwork(ctx context.Context) {
	info, err := f.source.GetNetworkInfo(ctx)
	f.publish(Result{Network: info, Err: err})
}
