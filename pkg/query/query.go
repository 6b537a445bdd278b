package query

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind is the classified intent of a free-form search string.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAddress
	KindTxHash
	KindBlockNumber
	KindEnsName
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindTxHash:
		return "transaction"
	case KindBlockNumber:
		return "block"
	case KindEnsName:
		return "ens name"
	default:
		return "invalid"
	}
}

// Intent carries the classified query; only the field matching Kind is set.
type Intent struct {
	Kind        Kind
	Address     common.Address
	TxHash      common.Hash
	BlockNumber uint64
	Base        int
	EnsName     string
}

// Classify parses a raw operator query. Precedence is strict and
// ordered: the fixed 40/64 hex widths win over generic hex parsing,
// and decimal-only strings win over the 0x catch-all, since decimal
// digits are a subset of hex digits.
func Classify(raw string) Intent {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Intent{Kind: KindInvalid}
	}

	body := s
	hasPrefix := false
	if len(s) >= 2 && (s[0] == '0' && (s[1] == 'x' || s[1] == 'X')) {
		body = s[2:]
		hasPrefix = true
	}

	if len(body) == 40 && isHex(body) {
		return Intent{Kind: KindAddress, Address: common.HexToAddress(body)}
	}
	if len(body) == 64 && isHex(body) {
		return Intent{Kind: KindTxHash, TxHash: common.HexToHash(body)}
	}
	if !hasPrefix && isDecimal(s) {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Intent{Kind: KindInvalid}
		}
		return Intent{Kind: KindBlockNumber, BlockNumber: n, Base: 10}
	}
	if hasPrefix && len(body) > 0 && isHex(body) {
		n, err := strconv.ParseUint(body, 16, 64)
		if err != nil {
			return Intent{Kind: KindInvalid}
		}
		return Intent{Kind: KindBlockNumber, BlockNumber: n, Base: 16}
	}
	if strings.Contains(s, ".") && isDomainName(s) {
		return Intent{Kind: KindEnsName, EnsName: s}
	}
	return Intent{Kind: KindInvalid}
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isDomainName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.':
		default:
			return false
		}
	}
	return true
}
