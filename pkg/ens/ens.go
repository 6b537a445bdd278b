package ens

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Mainnet ENS registry and the reverse-records batch helper.
var (
	RegistryAddress       = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")
	ReverseRecordsAddress = common.HexToAddress("0x3671aE578E63FdF66ad4F3E12CC0c0d71Ac7510C")
)

func keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// Namehash implements the EIP-137 name hashing algorithm. Names are
// folded to lowercase; the empty name hashes to 32 zero bytes.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := keccak256([]byte(labels[i]))
		node = common.BytesToHash(keccak256(node.Bytes(), labelHash))
	}
	return node
}
