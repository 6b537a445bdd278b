package rpc

import (
	"bytes"
	"context"
	"errors"
	"math/big"

	"evmex/pkg/decode"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

var (
	selName        = decode.Selector("name()")
	selSymbol      = decode.Selector("symbol()")
	selDecimals    = decode.Selector("decimals()")
	selTotalSupply = decode.Selector("totalSupply()")
	selBalanceOf   = decode.Selector("balanceOf(address)")
	selOwner       = decode.Selector("owner()")
)

var errEmptyReturn = errors.New("empty call return")

// call executes a read-only contract call with hand-built calldata.
func (c *Client) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{To: &to, Data: data}
	var ret []byte
	err := withRetry(ctx, func() error {
		var err error
		ret, err = c.eth.CallContract(ctx, msg, nil)
		return err
	})
	return ret, err
}

// callNoArgs calls a zero-argument function like symbol() or decimals().
func (c *Client) callNoArgs(ctx context.Context, to common.Address, selector [4]byte) ([]byte, error) {
	return c.call(ctx, to, selector[:])
}

// callWithAddress calls a one-address function like balanceOf(address).
func (c *Client) callWithAddress(ctx context.Context, to common.Address, selector [4]byte, arg common.Address) ([]byte, error) {
	data := make([]byte, 4+32)
	copy(data[0:4], selector[:])
	copy(data[4+12:], arg.Bytes())
	return c.call(ctx, to, data)
}

func (c *Client) callString(ctx context.Context, to common.Address, selector [4]byte) (string, error) {
	ret, err := c.callNoArgs(ctx, to, selector)
	if err != nil {
		return "", err
	}
	if len(ret) == 0 {
		return "", errEmptyReturn
	}
	return decodeReturnString(ret), nil
}

func (c *Client) callUint(ctx context.Context, to common.Address, selector [4]byte) (*big.Int, error) {
	ret, err := c.callNoArgs(ctx, to, selector)
	if err != nil {
		return nil, err
	}
	if len(ret) == 0 {
		return nil, errEmptyReturn
	}
	return new(big.Int).SetBytes(ret), nil
}

func (c *Client) callAddress(ctx context.Context, to common.Address, selector [4]byte) (common.Address, error) {
	ret, err := c.callNoArgs(ctx, to, selector)
	if err != nil {
		return common.Address{}, err
	}
	if len(ret) < 32 {
		return common.Address{}, errEmptyReturn
	}
	return common.BytesToAddress(ret[12:32]), nil
}

// decodeReturnString decodes a solidity string return value: offset word,
// length word, then the bytes. Some old tokens return a bytes32 instead.
func decodeReturnString(ret []byte) string {
	if len(ret) == 32 {
		return string(bytes.TrimRight(ret, "\x00"))
	}
	if len(ret) < 64 {
		return ""
	}
	offset := new(big.Int).SetBytes(ret[0:32])
	if !offset.IsInt64() {
		return ""
	}
	start := int(offset.Int64()) + 32
	if start < 32 || start > len(ret) {
		return ""
	}
	length := new(big.Int).SetBytes(ret[start-32 : start])
	if !length.IsInt64() {
		return ""
	}
	end := start + int(length.Int64())
	if end < start || end > len(ret) {
		return ""
	}
	return string(ret[start:end])
}

// tokenMetadata probes symbol() and decimals() on an unrecognized token
// contract. The curated registry is checked first.
func (c *Client) tokenMetadata(ctx context.Context, addr common.Address) (string, uint8) {
	if token, ok := decode.TokenByAddress(addr); ok {
		return token.Symbol, token.Decimals
	}

	symbol := "UNKNOWN"
	decimals := uint8(18)

	if s, err := c.callString(ctx, addr, selSymbol); err == nil && s != "" {
		symbol = s
	}
	if d, err := c.callUint(ctx, addr, selDecimals); err == nil && d.IsUint64() && d.Uint64() <= 255 {
		decimals = uint8(d.Uint64())
	}
	return symbol, decimals
}
