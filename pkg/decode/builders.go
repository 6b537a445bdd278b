package decode

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
)

var builderPatterns = []struct {
	pattern string
	tag     string
}{
	{"flashbots", "Flashbots"},
	{"bloxroute", "bloXroute"},
	{"blxr", "bloXroute"},
	{"builder0x69", "builder0x69"},
	{"titan", "Titan"},
	{"rsync", "rsync"},
	{"beaver", "Beaver"},
	{"buildai", "BuildAI"},
	{"penguinbuild", "Penguin"},
	{"ethbuilder", "EthBuilder"},
	{"blocknative", "Blocknative"},
}

var builderAddresses = map[common.Address]string{
	common.HexToAddress("0x95222290DD7278Aa3Ddd389Cc1E1d165CC4BAfe5"): "Beaver",
	common.HexToAddress("0x690B9A9E9aa1C9dB991C7721a92d351Db4FaC990"): "builder0x69",
	common.HexToAddress("0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"): "rsync",
	common.HexToAddress("0xDAFEA492D9c6733ae3d56b7Ed1ADB60692c98Bc5"): "Flashbots",
}

// BuilderTag matches a block's extra data against known builder
// signatures, letting short printable extra data pass through as its
// own tag, then falls back to known builder fee recipients. Empty
// string means no match.
func BuilderTag(extraData []byte, miner common.Address) string {
	if utf8.Valid(extraData) {
		s := string(extraData)
		lower := strings.ToLower(s)
		for _, b := range builderPatterns {
			if strings.Contains(lower, b.pattern) {
				return b.tag
			}
		}
		if len(s) > 0 && len(s) < 32 && printableTag(s) {
			return s
		}
	}
	if tag, ok := builderAddresses[miner]; ok {
		return tag
	}
	return ""
}

func printableTag(s string) bool {
	for _, r := range s {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
