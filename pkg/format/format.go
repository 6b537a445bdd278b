package format

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const addrColWidth = 19

func U256Decimals(value *big.Int, decimals uint8) string {
	if value == nil || value.Sign() == 0 {
		return "0"
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(value, divisor, new(big.Int))
	if rem.Sign() == 0 {
		return whole.String()
	}
	frac := rem.String()
	if pad := int(decimals) - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole.String()
	}
	return whole.String() + "." + frac
}

func Gas(v uint64) string {
	switch {
	case v >= 1000000:
		return fmt.Sprintf("%.2fM", float64(v)/1000000)
	case v >= 1000:
		return fmt.Sprintf("%.2fK", float64(v)/1000)
	default:
		return strconv.FormatUint(v, 10)
	}
}

func Gwei(wei *big.Int) string {
	if wei == nil {
		return "0 gwei"
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e9))
	v, _ := f.Float64()
	if v >= 1 {
		return fmt.Sprintf("%.2f gwei", v)
	}
	return fmt.Sprintf("%.4f gwei", v)
}

func Eth(wei *big.Int) string {
	if wei == nil {
		return "0.000000 ETH"
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	return AddCommas(f.Text('f', 6)) + " ETH"
}

func TokenAmount(v *big.Int, decimals uint8) string {
	s := U256Decimals(v, decimals)
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 4 {
		s = strings.TrimRight(s[:i+5], "0")
		s = strings.TrimSuffix(s, ".")
	}
	return AddCommas(s)
}

func TruncateHash(s string) string {
	if len(s) <= 20 {
		return s
	}
	return s[:10] + "..." + s[len(s)-6:]
}

func AddrFixedWidth(addr, ensName string) string {
	s := ensName
	if s == "" {
		s = TruncateHash(addr)
	} else if len(s) > addrColWidth {
		s = s[:addrColWidth-3] + "..."
	}
	return fmt.Sprintf("%-*s", addrColWidth, s)
}

func AddressWithENS(addr, ensName string) string {
	if ensName == "" {
		return TruncateHash(addr)
	}
	return fmt.Sprintf("%s (%s)", ensName, TruncateHash(addr))
}

func Timestamp(ts uint64, now time.Time) string {
	secs := now.Unix() - int64(ts)
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%d secs ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%d mins ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours ago", secs/3600)
	default:
		return fmt.Sprintf("%d days ago", secs/86400)
	}
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

func FormatFloat(f float64, decimals int) string {
	return AddCommas(fmt.Sprintf("%.*f", decimals, f))
}

func HexEncode(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
