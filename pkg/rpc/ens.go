package rpc

import (
	"context"
	"fmt"
	"math/big"

	"evmex/pkg/decode"
	"evmex/pkg/ens"

	"github.com/ethereum/go-ethereum/common"
)

var (
	selResolver = decode.Selector("resolver(bytes32)")
	selAddr     = decode.Selector("addr(bytes32)")
	selGetNames = decode.Selector("getNames(address[])")
)

// ResolveEns resolves an ENS name to an address through the registry: look up
// the name's resolver, then ask the resolver for the address record.
func (c *Client) ResolveEns(ctx context.Context, name string) (common.Address, error) {
	node := ens.Namehash(name)

	ret, err := c.callWithHash(ctx, ens.RegistryAddress, selResolver, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("ens registry: %w", err)
	}
	if len(ret) < 32 {
		return common.Address{}, fmt.Errorf("no resolver for %s", name)
	}
	resolver := common.BytesToAddress(ret[12:32])
	if resolver == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no resolver for %s", name)
	}

	ret, err = c.callWithHash(ctx, resolver, selAddr, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("ens resolver: %w", err)
	}
	if len(ret) < 32 {
		return common.Address{}, fmt.Errorf("%s is not registered", name)
	}
	addr := common.BytesToAddress(ret[12:32])
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s is not registered", name)
	}
	return addr, nil
}

// LookupEnsNames resolves reverse records for a batch of addresses via the
// ReverseRecords helper contract. The result always has one entry per input
// address; addresses without a record get an empty string.
func (c *Client) LookupEnsNames(ctx context.Context, addrs []common.Address) ([]string, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	data := make([]byte, 4+32+32+32*len(addrs))
	copy(data[0:4], selGetNames[:])
	big.NewInt(32).FillBytes(data[4:36])
	big.NewInt(int64(len(addrs))).FillBytes(data[36:68])
	for i, addr := range addrs {
		copy(data[68+i*32+12:68+(i+1)*32], addr.Bytes())
	}

	ret, err := c.call(ctx, ens.ReverseRecordsAddress, data)
	if err != nil {
		return nil, err
	}
	return decodeStringArray(ret, len(addrs)), nil
}

func (c *Client) callWithHash(ctx context.Context, to common.Address, selector [4]byte, h common.Hash) ([]byte, error) {
	data := make([]byte, 4+32)
	copy(data[0:4], selector[:])
	copy(data[4:], h.Bytes())
	return c.call(ctx, to, data)
}

// decodeStringArray decodes a solidity string[] return value. Malformed data
// degrades to empty strings rather than an error.
func decodeStringArray(ret []byte, count int) []string {
	names := make([]string, count)

	arrOff, ok := wordInt(ret, 0)
	if !ok {
		return names
	}
	arrLen, ok := wordInt(ret, arrOff)
	if !ok {
		return names
	}
	if arrLen > count {
		arrLen = count
	}
	base := arrOff + 32

	for i := 0; i < arrLen; i++ {
		elemOff, ok := wordInt(ret, base+i*32)
		if !ok {
			continue
		}
		strLen, ok := wordInt(ret, base+elemOff)
		if !ok {
			continue
		}
		strStart := base + elemOff + 32
		if strLen < 0 || strStart+strLen > len(ret) {
			continue
		}
		names[i] = string(ret[strStart : strStart+strLen])
	}
	return names
}

// wordInt reads the 32-byte word at pos as a non-negative int.
func wordInt(b []byte, pos int) (int, bool) {
	if pos < 0 || pos+32 > len(b) {
		return 0, false
	}
	w := new(big.Int).SetBytes(b[pos : pos+32])
	if !w.IsInt64() || w.Int64() < 0 || w.Int64() > int64(len(b)) {
		return 0, false
	}
	return int(w.Int64()), true
}
