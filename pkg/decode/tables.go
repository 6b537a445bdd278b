package decode

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ParamKind tags how a 32-byte parameter slot is interpreted.
type ParamKind uint8

const (
	ParamAddress ParamKind = iota
	ParamUint256
	ParamBool
	ParamRaw
)

// Param is one declared parameter of a known signature.
type Param struct {
	Name string
	Kind ParamKind
}

// FunctionSig is one entry of the function selector table. Entries
// without Params decode to a name only.
type FunctionSig struct {
	Name      string
	Signature string
	Params    []Param
}

// EventSig is one entry of the event topic table. Indexed params come
// from topics[1:], Data params from 32-byte chunks of the log data.
// Entries without a layout fall back to the generic decoder.
type EventSig struct {
	Name      string
	Signature string
	Indexed   []Param
	Data      []Param
}

func (e EventSig) HasLayout() bool {
	return len(e.Indexed)+len(e.Data) > 0
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Selector returns the 4-byte selector of a canonical function signature.
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], keccak256([]byte(signature)))
	return sel
}

// EventTopic returns the topic0 hash of a canonical event signature.
func EventTopic(signature string) common.Hash {
	return common.BytesToHash(keccak256([]byte(signature)))
}

// TransferTopic is matched against receipt logs to extract ERC-20 transfers.
var TransferTopic = EventTopic("Transfer(address,address,uint256)")

var functionTable = buildFunctionTable()

func buildFunctionTable() map[[4]byte]FunctionSig {
	sigs := []FunctionSig{
		// ERC-20
		{"transfer", "transfer(address,uint256)", []Param{{"to", ParamAddress}, {"amount", ParamUint256}}},
		{"transferFrom", "transferFrom(address,address,uint256)", []Param{{"from", ParamAddress}, {"to", ParamAddress}, {"amount", ParamUint256}}},
		{"approve", "approve(address,uint256)", []Param{{"spender", ParamAddress}, {"amount", ParamUint256}}},
		{"balanceOf", "balanceOf(address)", []Param{{"account", ParamAddress}}},
		{"allowance", "allowance(address,address)", []Param{{"owner", ParamAddress}, {"spender", ParamAddress}}},
		{"increaseAllowance", "increaseAllowance(address,uint256)", []Param{{"spender", ParamAddress}, {"addedValue", ParamUint256}}},
		{"decreaseAllowance", "decreaseAllowance(address,uint256)", []Param{{"spender", ParamAddress}, {"subtractedValue", ParamUint256}}},
		{"totalSupply", "totalSupply()", nil},
		{"name", "name()", nil},
		{"symbol", "symbol()", nil},
		{"decimals", "decimals()", nil},
		// ERC-721
		{"safeTransferFrom", "safeTransferFrom(address,address,uint256)", []Param{{"from", ParamAddress}, {"to", ParamAddress}, {"tokenId", ParamUint256}}},
		{"safeTransferFrom", "safeTransferFrom(address,address,uint256,bytes)", nil},
		{"ownerOf", "ownerOf(uint256)", []Param{{"tokenId", ParamUint256}}},
		{"getApproved", "getApproved(uint256)", []Param{{"tokenId", ParamUint256}}},
		{"setApprovalForAll", "setApprovalForAll(address,bool)", []Param{{"operator", ParamAddress}, {"approved", ParamBool}}},
		// Uniswap V2
		{"swapExactTokensForTokens", "swapExactTokensForTokens(uint256,uint256,address[],address,uint256)", nil},
		{"swapExactETHForTokens", "swapExactETHForTokens(uint256,address[],address,uint256)", nil},
		{"swapExactTokensForETH", "swapExactTokensForETH(uint256,uint256,address[],address,uint256)", nil},
		{"swapETHForExactTokens", "swapETHForExactTokens(uint256,address[],address,uint256)", nil},
		// Uniswap V3
		{"exactInput", "exactInput((bytes,address,uint256,uint256,uint256))", nil},
		{"exactInputSingle", "exactInputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160))", nil},
		{"exactOutput", "exactOutput((bytes,address,uint256,uint256,uint256))", nil},
		{"exactOutputSingle", "exactOutputSingle((address,address,uint24,address,uint256,uint256,uint160,uint160))", nil},
		{"multicall", "multicall(bytes[])", nil},
		{"multicall", "multicall(uint256,bytes[])", nil},
		// WETH
		{"deposit", "deposit()", nil},
		{"withdraw", "withdraw(uint256)", []Param{{"amount", ParamUint256}}},
		{"withdraw", "withdraw()", nil},
		// Common
		{"mint", "mint(uint256)", []Param{{"amount", ParamUint256}}},
		{"burn", "burn(uint256)", []Param{{"amount", ParamUint256}}},
		{"supportsInterface", "supportsInterface(bytes4)", nil},
		{"owner", "owner()", nil},
		// Proxy
		{"implementation", "implementation()", nil},
		{"admin", "admin()", nil},
		{"upgradeTo", "upgradeTo(address)", []Param{{"implementation", ParamAddress}}},
		{"upgradeToAndCall", "upgradeToAndCall(address,bytes)", nil},
		// Aave
		{"flashLoan", "flashLoan(address,address[],uint256[],uint256[],address,bytes,uint16)", nil},
		{"supply", "supply(address,uint256,address,uint16)", nil},
		{"borrow", "borrow(address,uint256,uint256,uint16,address)", nil},
		{"repay", "repay(address,uint256,uint256,address)", nil},
		// ENS
		{"resolver", "resolver(bytes32)", nil},
		{"addr", "addr(bytes32)", nil},
		{"setAddr", "setAddr(bytes32,address)", []Param{{"node", ParamRaw}, {"addr", ParamAddress}}},
		{"setName", "setName(string)", nil},
	}

	m := make(map[[4]byte]FunctionSig, len(sigs))
	for _, s := range sigs {
		m[Selector(s.Signature)] = s
	}
	return m
}

var eventTable = buildEventTable()

func buildEventTable() map[common.Hash]EventSig {
	sigs := []EventSig{
		{
			Name:      "Transfer",
			Signature: "Transfer(address,address,uint256)",
			Indexed:   []Param{{"from", ParamAddress}, {"to", ParamAddress}},
			Data:      []Param{{"value", ParamUint256}},
		},
		{
			Name:      "Approval",
			Signature: "Approval(address,address,uint256)",
			Indexed:   []Param{{"owner", ParamAddress}, {"spender", ParamAddress}},
			Data:      []Param{{"value", ParamUint256}},
		},
		{
			Name:      "Swap",
			Signature: "Swap(address,uint256,uint256,uint256,uint256,address)",
			Indexed:   []Param{{"sender", ParamAddress}, {"to", ParamAddress}},
			Data: []Param{
				{"amount0In", ParamUint256},
				{"amount1In", ParamUint256},
				{"amount0Out", ParamUint256},
				{"amount1Out", ParamUint256},
			},
		},
		{
			// Uniswap V3; params go through the generic decoder.
			Name:      "Swap",
			Signature: "Swap(address,address,int256,int256,uint160,uint128,int24)",
		},
		{
			Name:      "Deposit",
			Signature: "Deposit(address,uint256)",
			Indexed:   []Param{{"dst", ParamAddress}},
			Data:      []Param{{"wad", ParamUint256}},
		},
		{
			Name:      "Withdrawal",
			Signature: "Withdrawal(address,uint256)",
			Indexed:   []Param{{"src", ParamAddress}},
			Data:      []Param{{"wad", ParamUint256}},
		},
	}

	m := make(map[common.Hash]EventSig, len(sigs))
	for _, s := range sigs {
		m[EventTopic(s.Signature)] = s
	}
	return m
}

// LookupFunction resolves a 4-byte selector; absence is a normal miss.
func LookupFunction(selector [4]byte) (FunctionSig, bool) {
	sig, ok := functionTable[selector]
	return sig, ok
}

// LookupEvent resolves a log's topic0; absence is a normal miss.
func LookupEvent(topic0 common.Hash) (EventSig, bool) {
	sig, ok := eventTable[topic0]
	return sig, ok
}
