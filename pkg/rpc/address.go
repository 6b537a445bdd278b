package rpc

import (
	"context"
	"math/big"

	"evmex/pkg/decode"
	"evmex/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// EIP-1967 implementation slot: keccak256("eip1967.proxy.implementation") - 1.
var implementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

// GetAddress fetches the account state for an address. Contracts additionally
// get proxy, ERC-20, and owner probes; all probes are best-effort.
func (c *Client) GetAddress(ctx context.Context, addr common.Address) (*models.AddressInfo, error) {
	info := &models.AddressInfo{Address: addr}
	var code []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withRetry(gctx, func() error {
			var err error
			info.Balance, err = c.eth.BalanceAt(gctx, addr, nil)
			return err
		})
	})
	g.Go(func() error {
		return withRetry(gctx, func() error {
			var err error
			info.Nonce, err = c.eth.NonceAt(gctx, addr, nil)
			return err
		})
	})
	g.Go(func() error {
		return withRetry(gctx, func() error {
			var err error
			code, err = c.eth.CodeAt(gctx, addr, nil)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	info.IsContract = len(code) > 0
	info.CodeSize = len(code)

	if info.IsContract {
		c.probeContract(ctx, info)
	}

	info.TokenBalances = c.tokenBalances(ctx, addr)

	if names, err := c.LookupEnsNames(ctx, []common.Address{addr}); err == nil && len(names) == 1 {
		info.EnsName = names[0]
	}

	return info, nil
}

func (c *Client) probeContract(ctx context.Context, info *models.AddressInfo) {
	var slot []byte
	err := withRetry(ctx, func() error {
		var err error
		slot, err = c.eth.StorageAt(ctx, info.Address, implementationSlot, nil)
		return err
	})
	if err == nil && len(slot) == 32 {
		impl := common.BytesToAddress(slot[12:])
		if impl != (common.Address{}) {
			info.Implementation = &impl
		}
	}

	// ERC-20 detection needs both symbol() and decimals() to answer.
	symbol, symErr := c.callString(ctx, info.Address, selSymbol)
	decimals, decErr := c.callUint(ctx, info.Address, selDecimals)
	if symErr == nil && decErr == nil && symbol != "" && decimals.IsUint64() && decimals.Uint64() <= 255 {
		token := &models.TokenInfo{Symbol: symbol, Decimals: uint8(decimals.Uint64())}
		if name, err := c.callString(ctx, info.Address, selName); err == nil {
			token.Name = name
		}
		if supply, err := c.callUint(ctx, info.Address, selTotalSupply); err == nil {
			token.TotalSupply = supply
		}
		info.Token = token
	}

	if owner, err := c.callAddress(ctx, info.Address, selOwner); err == nil && owner != (common.Address{}) {
		info.Owner = &owner
	}
}

// tokenBalances probes balanceOf across the curated registry, keeping
// holdings above a dust threshold.
func (c *Client) tokenBalances(ctx context.Context, addr common.Address) []models.TokenBalance {
	tokens := decode.PopularTokens()
	balances := make([]*big.Int, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(receiptConcurrency)
	for i, token := range tokens {
		g.Go(func() error {
			ret, err := c.callWithAddress(gctx, token.Address, selBalanceOf, addr)
			if err != nil || len(ret) < 32 {
				return nil
			}
			balances[i] = new(big.Int).SetBytes(ret[:32])
			return nil
		})
	}
	_ = g.Wait()

	var holdings []models.TokenBalance
	for i, token := range tokens {
		bal := balances[i]
		if bal == nil || bal.Sign() == 0 {
			continue
		}
		if bal.Cmp(dustThreshold(token.Decimals)) < 0 {
			continue
		}
		holdings = append(holdings, models.TokenBalance{
			Token:    token.Address,
			Symbol:   token.Symbol,
			Decimals: token.Decimals,
			Balance:  bal,
		})
	}
	return holdings
}

func dustThreshold(decimals uint8) *big.Int {
	exp := int64(decimals) - 4
	if exp < 0 {
		exp = 0
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
}
