package decode

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"evmex/pkg/format"
	"evmex/pkg/models"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Method decodes transaction input into a named method with best-effort
// params. Returns nil when the selector is absent or unknown.
func Method(input []byte, token *Token) *models.DecodedMethod {
	if len(input) < 4 {
		return nil
	}
	var sel [4]byte
	copy(sel[:], input)
	sig, ok := LookupFunction(sel)
	if !ok {
		return nil
	}
	return &models.DecodedMethod{
		Name:      sig.Name,
		Signature: sig.Signature,
		Params:    Calldata(input, sig, token),
	}
}

// Calldata walks the signature's declared parameter slots in the data
// following the selector. A slot that cannot be fully read renders as
// raw hex for that one parameter without aborting the rest.
func Calldata(data []byte, sig FunctionSig, token *Token) []models.DecodedParam {
	if len(sig.Params) == 0 || len(data) < 4 {
		return nil
	}
	args := data[4:]
	params := make([]models.DecodedParam, 0, len(sig.Params))
	for i, p := range sig.Params {
		start := i * 32
		if start >= len(args) {
			break
		}
		end := start + 32
		if end > len(args) {
			params = append(params, models.DecodedParam{Name: p.Name, Value: format.HexEncode(args[start:])})
			break
		}
		params = append(params, decodeCallSlot(p, args[start:end], token))
	}
	return params
}

func decodeCallSlot(p Param, slot []byte, token *Token) models.DecodedParam {
	switch p.Kind {
	case ParamAddress:
		if addressPadded(slot) {
			return models.DecodedParam{Name: p.Name, Value: common.BytesToAddress(slot[12:]).Hex(), IsAddress: true}
		}
	case ParamUint256:
		v := new(big.Int).SetBytes(slot)
		return models.DecodedParam{Name: p.Name, Value: callAmount(v, token)}
	case ParamBool:
		return models.DecodedParam{Name: p.Name, Value: boolValue(slot)}
	}
	return models.DecodedParam{Name: p.Name, Value: format.HexEncode(slot)}
}

func callAmount(v *big.Int, token *Token) string {
	if v.Cmp(maxUint256) == 0 {
		return "unlimited"
	}
	if token != nil {
		return format.TokenAmount(v, token.Decimals)
	}
	return v.String()
}

// Log decodes a known event's params: indexed from topics[1:], the rest
// from 32-byte chunks of the log data. Amounts use the emitting token's
// decimals when it is in the registry, 18 otherwise.
func Log(emitter common.Address, topics []common.Hash, data []byte, sig EventSig) []models.DecodedParam {
	token := tokenFor(emitter)
	params := make([]models.DecodedParam, 0, len(sig.Indexed)+len(sig.Data))
	for i, p := range sig.Indexed {
		if i+1 >= len(topics) {
			break
		}
		params = append(params, decodeTopic(p, topics[i+1]))
	}
	for i, p := range sig.Data {
		start := i * 32
		if start >= len(data) {
			break
		}
		end := start + 32
		if end > len(data) {
			params = append(params, models.DecodedParam{Name: p.Name, Value: format.HexEncode(data[start:])})
			break
		}
		params = append(params, decodeDataSlot(p, data[start:end], token))
	}
	return params
}

func decodeTopic(p Param, topic common.Hash) models.DecodedParam {
	b := topic.Bytes()
	switch p.Kind {
	case ParamAddress:
		if addressPadded(b) {
			return models.DecodedParam{Name: p.Name, Value: common.BytesToAddress(b[12:]).Hex(), IsAddress: true}
		}
	case ParamUint256:
		return models.DecodedParam{Name: p.Name, Value: new(big.Int).SetBytes(b).String()}
	}
	return models.DecodedParam{Name: p.Name, Value: format.HexEncode(b)}
}

func decodeDataSlot(p Param, slot []byte, token *Token) models.DecodedParam {
	switch p.Kind {
	case ParamAddress:
		if addressPadded(slot) {
			return models.DecodedParam{Name: p.Name, Value: common.BytesToAddress(slot[12:]).Hex(), IsAddress: true}
		}
	case ParamUint256:
		v := new(big.Int).SetBytes(slot)
		return models.DecodedParam{Name: p.Name, Value: eventAmount(v, token)}
	case ParamBool:
		return models.DecodedParam{Name: p.Name, Value: boolValue(slot)}
	}
	return models.DecodedParam{Name: p.Name, Value: format.HexEncode(slot)}
}

func eventAmount(v *big.Int, token *Token) string {
	if v.Cmp(maxUint256) == 0 {
		return "unlimited"
	}
	if token != nil {
		return format.TokenAmount(v, token.Decimals)
	}
	return format.U256Decimals(v, 18)
}

// GenericLog is the fallback for unknown events. Topics whose first 12
// bytes are zero decode as addresses, the rest as raw uint256; the data
// splits into at most four 32-byte chunks.
func GenericLog(topics []common.Hash, data []byte) []models.DecodedParam {
	var params []models.DecodedParam
	for i := 1; i < len(topics); i++ {
		b := topics[i].Bytes()
		if addressPadded(b) {
			params = append(params, models.DecodedParam{
				Name:      fmt.Sprintf("topic%d", i),
				Value:     common.BytesToAddress(b[12:]).Hex(),
				IsAddress: true,
			})
		} else {
			params = append(params, models.DecodedParam{
				Name:  fmt.Sprintf("topic%d", i),
				Value: new(big.Int).SetBytes(b).String(),
			})
		}
	}
	chunks := len(data) / 32
	if chunks > 4 {
		chunks = 4
	}
	for i := 0; i < chunks; i++ {
		v := new(big.Int).SetBytes(data[i*32 : (i+1)*32])
		params = append(params, models.DecodedParam{
			Name:  fmt.Sprintf("data%d", i),
			Value: format.U256Decimals(v, 18),
		})
	}
	return params
}

func addressPadded(b []byte) bool {
	for _, x := range b[:12] {
		if x != 0 {
			return false
		}
	}
	return true
}

func boolValue(slot []byte) string {
	for _, x := range slot {
		if x != 0 {
			return "true"
		}
	}
	return "false"
}

func tokenFor(addr common.Address) *Token {
	if t, ok := TokenByAddress(addr); ok {
		return &t
	}
	return nil
}
