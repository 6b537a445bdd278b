package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxType identifies the transaction envelope format.
type TxType uint8

const (
	TxLegacy TxType = iota
	TxAccessList
	TxDynamicFee
	TxBlob
	TxUnknown
)

// TxTypeFromByte maps the wire type discriminant to a TxType.
func TxTypeFromByte(b uint8) TxType {
	switch b {
	case 0:
		return TxLegacy
	case 1:
		return TxAccessList
	case 2:
		return TxDynamicFee
	case 3:
		return TxBlob
	default:
		return TxUnknown
	}
}

func (t TxType) String() string {
	switch t {
	case TxLegacy:
		return "Legacy (Type 0)"
	case TxAccessList:
		return "Access List (Type 1)"
	case TxDynamicFee:
		return "Dynamic Fee (Type 2)"
	case TxBlob:
		return "Blob (Type 3)"
	default:
		return "Unknown"
	}
}

// TxStatus is the receipt outcome of a transaction.
type TxStatus uint8

const (
	StatusPending TxStatus = iota
	StatusSuccess
	StatusFailed
)

func (s TxStatus) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// DecodedParam is one decoded calldata or log parameter. Value is the
// display string; address params carry the full hex address so links
// can resolve from it.
type DecodedParam struct {
	Name      string
	Value     string
	IsAddress bool
}

// DecodedMethod is a best-effort decoded function call.
type DecodedMethod struct {
	Name      string
	Signature string
	Params    []DecodedParam
}

// DecodedLog is one receipt log with best-effort decoded parameters.
type DecodedLog struct {
	Address   common.Address
	Topics    []common.Hash
	Data      []byte
	EventName string
	Params    []DecodedParam
}

// TokenTransfer is an ERC-20 Transfer extracted from a receipt log.
type TokenTransfer struct {
	Token    common.Address
	From     common.Address
	To       common.Address
	Amount   *big.Int
	Symbol   string
	Decimals uint8
}

// TxInfo holds everything the transaction screen renders.
type TxInfo struct {
	Hash            common.Hash
	Status          TxStatus
	BlockNumber     *uint64
	Timestamp       uint64
	From            common.Address
	To              *common.Address
	ContractCreated *common.Address
	Value           *big.Int
	Nonce           uint64
	GasLimit        uint64
	GasUsed         uint64
	GasPrice        *big.Int
	MaxFee          *big.Int
	MaxPriorityFee  *big.Int
	ActualFee       *big.Int
	Type            TxType
	InputSize       int
	Method          *DecodedMethod
	Transfers       []TokenTransfer
	Logs            []DecodedLog
	BlobHashes      []common.Hash
	AccessListSize  int
	FromENS         string
	ToENS           string
}

// TxSummary is one row in a block's transaction list.
type TxSummary struct {
	Hash    common.Hash
	From    common.Address
	To      *common.Address
	Value   *big.Int
	GasUsed uint64
}

// BlockInfo holds the block header fields the block screen renders.
type BlockInfo struct {
	Number           uint64
	Hash             common.Hash
	ParentHash       common.Hash
	Timestamp        uint64
	Miner            common.Address
	MinerENS         string
	GasUsed          uint64
	GasLimit         uint64
	BaseFee          *big.Int
	ExtraData        []byte
	BuilderTag       string
	TxCount          int
	BlobGasUsed      *uint64
	WithdrawalsCount int
}

// BlockStats aggregates receipt data across a block.
type BlockStats struct {
	TotalValue  *big.Int
	TotalFees   *big.Int
	BurntFees   *big.Int
	BlobTxCount int
}

// BlockData is a fully fetched block: header info, transaction rows, and stats.
type BlockData struct {
	Info  BlockInfo
	Txs   []TxSummary
	Stats BlockStats
}

// TokenBalance is one ERC-20 holding of an address.
type TokenBalance struct {
	Token    common.Address
	Symbol   string
	Decimals uint8
	Balance  *big.Int
}

// TokenInfo describes an ERC-20 contract.
type TokenInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// AddressInfo holds everything the address screen renders.
type AddressInfo struct {
	Address        common.Address
	Balance        *big.Int
	Nonce          uint64
	IsContract     bool
	CodeSize       int
	Implementation *common.Address
	Token          *TokenInfo
	Owner          *common.Address
	EnsName        string
	TokenBalances  []TokenBalance
}

// NetworkInfo is the home screen's network snapshot.
type NetworkInfo struct {
	LatestBlock   uint64
	GasPrice      *big.Int
	ClientVersion string
	BaseFeeTrend  []float64
	PriorityFees  [3]float64
}
