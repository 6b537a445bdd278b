package server

import (
	"math/big"

	"evmex/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// headMessage is the websocket payload pushed for each new chain head.
type headMessage struct {
	Type       string `json:"type"`
	Number     uint64 `json:"number"`
	Hash       string `json:"hash"`
	BuilderTag string `json:"builder_tag,omitempty"`
	Timestamp  uint64 `json:"timestamp"`
}

type networkResponse struct {
	LatestBlock   uint64     `json:"latest_block"`
	GasPriceWei   string     `json:"gas_price_wei"`
	ClientVersion string     `json:"client_version,omitempty"`
	BaseFeeTrend  []float64  `json:"base_fee_trend,omitempty"`
	PriorityFees  [3]float64 `json:"priority_fees_gwei"`
}

type txSummaryResponse struct {
	Hash     string `json:"hash"`
	From     string `json:"from"`
	To       string `json:"to,omitempty"`
	ValueWei string `json:"value_wei"`
	GasUsed  uint64 `json:"gas_used"`
}

type blockResponse struct {
	Number           uint64              `json:"number"`
	Hash             string              `json:"hash"`
	ParentHash       string              `json:"parent_hash"`
	Timestamp        uint64              `json:"timestamp"`
	Miner            string              `json:"miner"`
	MinerENS         string              `json:"miner_ens,omitempty"`
	BuilderTag       string              `json:"builder_tag,omitempty"`
	GasUsed          uint64              `json:"gas_used"`
	GasLimit         uint64              `json:"gas_limit"`
	BaseFeeWei       string              `json:"base_fee_wei,omitempty"`
	BlobGasUsed      *uint64             `json:"blob_gas_used,omitempty"`
	WithdrawalsCount int                 `json:"withdrawals_count"`
	TxCount          int                 `json:"tx_count"`
	TotalValueWei    string              `json:"total_value_wei"`
	TotalFeesWei     string              `json:"total_fees_wei"`
	BurntFeesWei     string              `json:"burnt_fees_wei"`
	BlobTxCount      int                 `json:"blob_tx_count"`
	Transactions     []txSummaryResponse `json:"transactions"`
}

type decodedParamResponse struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	IsAddress bool   `json:"is_address,omitempty"`
}

type decodedMethodResponse struct {
	Name      string                 `json:"name"`
	Signature string                 `json:"signature"`
	Params    []decodedParamResponse `json:"params"`
}

type transferResponse struct {
	Token    string `json:"token"`
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type logResponse struct {
	Address   string                 `json:"address"`
	EventName string                 `json:"event_name,omitempty"`
	Topics    []string               `json:"topics"`
	Data      string                 `json:"data"`
	Params    []decodedParamResponse `json:"params,omitempty"`
}

type txResponse struct {
	Hash              string                 `json:"hash"`
	Status            string                 `json:"status"`
	BlockNumber       *uint64                `json:"block_number,omitempty"`
	Timestamp         uint64                 `json:"timestamp,omitempty"`
	From              string                 `json:"from"`
	FromENS           string                 `json:"from_ens,omitempty"`
	To                string                 `json:"to,omitempty"`
	ToENS             string                 `json:"to_ens,omitempty"`
	ContractCreated   string                 `json:"contract_created,omitempty"`
	ValueWei          string                 `json:"value_wei"`
	Nonce             uint64                 `json:"nonce"`
	GasLimit          uint64                 `json:"gas_limit"`
	GasUsed           uint64                 `json:"gas_used,omitempty"`
	GasPriceWei       string                 `json:"gas_price_wei,omitempty"`
	MaxFeeWei         string                 `json:"max_fee_wei,omitempty"`
	MaxPriorityFeeWei string                 `json:"max_priority_fee_wei,omitempty"`
	ActualFeeWei      string                 `json:"actual_fee_wei,omitempty"`
	Type              string                 `json:"type"`
	InputSize         int                    `json:"input_size"`
	AccessListSize    int                    `json:"access_list_size,omitempty"`
	BlobHashes        []string               `json:"blob_hashes,omitempty"`
	Method            *decodedMethodResponse `json:"method,omitempty"`
	Transfers         []transferResponse     `json:"transfers,omitempty"`
	Logs              []logResponse          `json:"logs,omitempty"`
}

type tokenInfoResponse struct {
	Name        string `json:"name,omitempty"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply,omitempty"`
}

type tokenBalanceResponse struct {
	Token    string `json:"token"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Balance  string `json:"balance"`
}

type addressResponse struct {
	Address        string                 `json:"address"`
	EnsName        string                 `json:"ens_name,omitempty"`
	BalanceWei     string                 `json:"balance_wei"`
	Nonce          uint64                 `json:"nonce"`
	IsContract     bool                   `json:"is_contract"`
	CodeSize       int                    `json:"code_size,omitempty"`
	Implementation string                 `json:"implementation,omitempty"`
	Owner          string                 `json:"owner,omitempty"`
	Token          *tokenInfoResponse     `json:"token,omitempty"`
	TokenBalances  []tokenBalanceResponse `json:"token_balances,omitempty"`
}

func newHeadMessage(info *models.BlockInfo) headMessage {
	return headMessage{
		Type:       "head",
		Number:     info.Number,
		Hash:       info.Hash.Hex(),
		BuilderTag: info.BuilderTag,
		Timestamp:  info.Timestamp,
	}
}

func newNetworkResponse(n *models.NetworkInfo) networkResponse {
	return networkResponse{
		LatestBlock:   n.LatestBlock,
		GasPriceWei:   weiString(n.GasPrice),
		ClientVersion: n.ClientVersion,
		BaseFeeTrend:  n.BaseFeeTrend,
		PriorityFees:  n.PriorityFees,
	}
}

func newBlockResponse(b *models.BlockData) blockResponse {
	txs := make([]txSummaryResponse, 0, len(b.Txs))
	for _, tx := range b.Txs {
		txs = append(txs, txSummaryResponse{
			Hash:     tx.Hash.Hex(),
			From:     tx.From.Hex(),
			To:       addrString(tx.To),
			ValueWei: weiString(tx.Value),
			GasUsed:  tx.GasUsed,
		})
	}
	return blockResponse{
		Number:           b.Info.Number,
		Hash:             b.Info.Hash.Hex(),
		ParentHash:       b.Info.ParentHash.Hex(),
		Timestamp:        b.Info.Timestamp,
		Miner:            b.Info.Miner.Hex(),
		MinerENS:         b.Info.MinerENS,
		BuilderTag:       b.Info.BuilderTag,
		GasUsed:          b.Info.GasUsed,
		GasLimit:         b.Info.GasLimit,
		BaseFeeWei:       weiString(b.Info.BaseFee),
		BlobGasUsed:      copyUint64(b.Info.BlobGasUsed),
		WithdrawalsCount: b.Info.WithdrawalsCount,
		TxCount:          b.Info.TxCount,
		TotalValueWei:    weiString(b.Stats.TotalValue),
		TotalFeesWei:     weiString(b.Stats.TotalFees),
		BurntFeesWei:     weiString(b.Stats.BurntFees),
		BlobTxCount:      b.Stats.BlobTxCount,
		Transactions:     txs,
	}
}

func newTxResponse(tx *models.TxInfo) txResponse {
	resp := txResponse{
		Hash:              tx.Hash.Hex(),
		Status:            tx.Status.String(),
		BlockNumber:       copyUint64(tx.BlockNumber),
		Timestamp:         tx.Timestamp,
		From:              tx.From.Hex(),
		FromENS:           tx.FromENS,
		To:                addrString(tx.To),
		ToENS:             tx.ToENS,
		ContractCreated:   addrString(tx.ContractCreated),
		ValueWei:          weiString(tx.Value),
		Nonce:             tx.Nonce,
		GasLimit:          tx.GasLimit,
		GasUsed:           tx.GasUsed,
		GasPriceWei:       weiString(tx.GasPrice),
		MaxFeeWei:         weiString(tx.MaxFee),
		MaxPriorityFeeWei: weiString(tx.MaxPriorityFee),
		ActualFeeWei:      weiString(tx.ActualFee),
		Type:              tx.Type.String(),
		InputSize:         tx.InputSize,
		AccessListSize:    tx.AccessListSize,
	}
	for _, h := range tx.BlobHashes {
		resp.BlobHashes = append(resp.BlobHashes, h.Hex())
	}
	if tx.Method != nil {
		resp.Method = &decodedMethodResponse{
			Name:      tx.Method.Name,
			Signature: tx.Method.Signature,
			Params:    newParamResponses(tx.Method.Params),
		}
	}
	for _, t := range tx.Transfers {
		resp.Transfers = append(resp.Transfers, transferResponse{
			Token:    t.Token.Hex(),
			From:     t.From.Hex(),
			To:       t.To.Hex(),
			Amount:   weiString(t.Amount),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		})
	}
	for _, lg := range tx.Logs {
		topics := make([]string, 0, len(lg.Topics))
		for _, topic := range lg.Topics {
			topics = append(topics, topic.Hex())
		}
		resp.Logs = append(resp.Logs, logResponse{
			Address:   lg.Address.Hex(),
			EventName: lg.EventName,
			Topics:    topics,
			Data:      hexutil.Encode(lg.Data),
			Params:    newParamResponses(lg.Params),
		})
	}
	return resp
}

func newAddressResponse(a *models.AddressInfo) addressResponse {
	resp := addressResponse{
		Address:        a.Address.Hex(),
		EnsName:        a.EnsName,
		BalanceWei:     weiString(a.Balance),
		Nonce:          a.Nonce,
		IsContract:     a.IsContract,
		CodeSize:       a.CodeSize,
		Implementation: addrString(a.Implementation),
		Owner:          addrString(a.Owner),
	}
	if a.Token != nil {
		resp.Token = &tokenInfoResponse{
			Name:        a.Token.Name,
			Symbol:      a.Token.Symbol,
			Decimals:    a.Token.Decimals,
			TotalSupply: weiString(a.Token.TotalSupply),
		}
	}
	for _, tb := range a.TokenBalances {
		resp.TokenBalances = append(resp.TokenBalances, tokenBalanceResponse{
			Token:    tb.Token.Hex(),
			Symbol:   tb.Symbol,
			Decimals: tb.Decimals,
			Balance:  weiString(tb.Balance),
		})
	}
	return resp
}

func newParamResponses(params []models.DecodedParam) []decodedParamResponse {
	if len(params) == 0 {
		return nil
	}
	out := make([]decodedParamResponse, 0, len(params))
	for _, p := range params {
		out = append(out, decodedParamResponse{Name: p.Name, Value: p.Value, IsAddress: p.IsAddress})
	}
	return out
}

func weiString(x *big.Int) string {
	if x == nil {
		return ""
	}
	return x.String()
}

func addrString(a *common.Address) string {
	if a == nil {
		return ""
	}
	return a.Hex()
}

func copyUint64(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
