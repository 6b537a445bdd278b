package rpc

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evmex/pkg/ens"
	"evmex/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

type rpcHandler func(method string, params []interface{}) interface{}

func newRPCServer(t *testing.T, handler rpcHandler) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int           `json:"id"`
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  handler(req.Method, req.Params),
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, handler rpcHandler) (*Client, func()) {
	t.Helper()
	server := newRPCServer(t, func(method string, params []interface{}) interface{} {
		if method == "eth_chainId" {
			return "0x1"
		}
		return handler(method, params)
	})
	client, err := Dial(context.Background(), server.URL)
	if err != nil {
		server.Close()
		t.Fatalf("Dial: %v", err)
	}
	return client, func() {
		client.Close()
		server.Close()
	}
}

func word(n int) []byte {
	w := make([]byte, 32)
	big.NewInt(int64(n)).FillBytes(w)
	return w
}

func padRight(b []byte) []byte {
	padded := make([]byte, (len(b)+31)/32*32)
	copy(padded, b)
	return padded
}

// uintResult ABI-encodes a single uint256 return value.
func uintResult(v *big.Int) string {
	w := make([]byte, 32)
	v.FillBytes(w)
	return "0x" + hex.EncodeToString(w)
}

// addressResult ABI-encodes a single address return value.
func addressResult(addr common.Address) string {
	w := make([]byte, 32)
	copy(w[12:], addr.Bytes())
	return "0x" + hex.EncodeToString(w)
}

// stringResult ABI-encodes a single string return value.
func stringResult(s string) string {
	buf := append(word(32), word(len(s))...)
	buf = append(buf, padRight([]byte(s))...)
	return "0x" + hex.EncodeToString(buf)
}

// stringArrayResult ABI-encodes a string[] return value.
func stringArrayResult(names []string) string {
	buf := append(word(32), word(len(names))...)
	headSize := 32 * len(names)
	var tail []byte
	for _, name := range names {
		buf = append(buf, word(headSize+len(tail))...)
		tail = append(tail, word(len(name))...)
		tail = append(tail, padRight([]byte(name))...)
	}
	buf = append(buf, tail...)
	return "0x" + hex.EncodeToString(buf)
}

func blockJSON(number string, txs []interface{}) map[string]interface{} {
	txRoot := "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"
	if len(txs) > 0 {
		txRoot = "0x0000000000000000000000000000000000000000000000000000000000000001"
	}
	if txs == nil {
		txs = []interface{}{}
	}
	return map[string]interface{}{
		"number":           number,
		"hash":             "0x0000000000000000000000000000000000000000000000000000000000000001",
		"parentHash":       "0x0000000000000000000000000000000000000000000000000000000000000002",
		"sha3Uncles":       "0x1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347",
		"timestamp":        "0x5f5e1000",
		"miner":            "0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5",
		"gasLimit":         "0x1c9c380",
		"gasUsed":          "0xbebc20",
		"baseFeePerGas":    "0x3b9aca00",
		"difficulty":       "0x0",
		"extraData":        "0x6265617665726275696c642e6f7267",
		"mixHash":          "0x0000000000000000000000000000000000000000000000000000000000000000",
		"nonce":            "0x0000000000000000",
		"stateRoot":        "0x0000000000000000000000000000000000000000000000000000000000000000",
		"receiptsRoot":     "0x0000000000000000000000000000000000000000000000000000000000000000",
		"transactionsRoot": txRoot,
		"logsBloom":        "0x" + strings.Repeat("00", 256),
		"transactions":     txs,
	}
}

func receiptJSON(txHash common.Hash, gasUsed, effectiveGasPrice string, logs []interface{}) map[string]interface{} {
	if logs == nil {
		logs = []interface{}{}
	}
	return map[string]interface{}{
		"transactionHash":   txHash.Hex(),
		"transactionIndex":  "0x0",
		"blockHash":         "0x00000000000000000000000000000000000000000000000000000000000000aa",
		"blockNumber":       "0x1000",
		"cumulativeGasUsed": gasUsed,
		"gasUsed":           gasUsed,
		"effectiveGasPrice": effectiveGasPrice,
		"logs":              logs,
		"logsBloom":         "0x" + strings.Repeat("00", 256),
		"status":            "0x1",
		"type":              "0x2",
	}
}

func logJSON(address common.Address, topics []string, data string) map[string]interface{} {
	return map[string]interface{}{
		"address":          strings.ToLower(address.Hex()),
		"topics":           topics,
		"data":             data,
		"blockNumber":      "0x1000",
		"transactionHash":  "0x00000000000000000000000000000000000000000000000000000000000000bb",
		"transactionIndex": "0x0",
		"blockHash":        "0x00000000000000000000000000000000000000000000000000000000000000aa",
		"logIndex":         "0x0",
		"removed":          false,
	}
}

func signedTx(t *testing.T, key *ecdsa.PrivateKey, to *common.Address, value *big.Int, data []byte) *types.Transaction {
	t.Helper()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     7,
		GasTipCap: big.NewInt(1000000000),
		GasFeeCap: big.NewInt(2000000000),
		Gas:       60000,
		To:        to,
		Value:     value,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(1)), key)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func txJSON(t *testing.T, tx *types.Transaction, from common.Address, blockNumber string) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	m["from"] = strings.ToLower(from.Hex())
	if blockNumber != "" {
		m["blockNumber"] = blockNumber
		m["blockHash"] = "0x00000000000000000000000000000000000000000000000000000000000000aa"
	}
	return m
}

var (
	wethAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	transferSig = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
)

func TestGetBlock_Integration(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	recipient := common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	oneEth := big.NewInt(1000000000000000000)

	tx := signedTx(t, key, &recipient, oneEth, nil)

	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getBlockByNumber":
			return blockJSON("0x1000", []interface{}{txJSON(t, tx, from, "0x1000")})
		case "eth_getTransactionReceipt":
			return receiptJSON(tx.Hash(), "0x5208", "0x3b9aca00", nil)
		case "eth_call":
			return "0x"
		default:
			return "0x0"
		}
	})
	defer done()

	data, err := client.GetBlock(context.Background(), big.NewInt(0x1000))
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}

	if data.Info.Number != 0x1000 {
		t.Errorf("Number = %d; want %d", data.Info.Number, 0x1000)
	}
	if data.Info.TxCount != 1 {
		t.Errorf("TxCount = %d; want 1", data.Info.TxCount)
	}
	if data.Info.BuilderTag != "Beaver" {
		t.Errorf("BuilderTag = %q; want %q", data.Info.BuilderTag, "Beaver")
	}
	if data.Info.BaseFee == nil || data.Info.BaseFee.Int64() != 1000000000 {
		t.Errorf("BaseFee = %v; want 1000000000", data.Info.BaseFee)
	}

	if len(data.Txs) != 1 {
		t.Fatalf("len(Txs) = %d; want 1", len(data.Txs))
	}
	row := data.Txs[0]
	if row.From != from {
		t.Errorf("From = %s; want %s", row.From.Hex(), from.Hex())
	}
	if row.To == nil || *row.To != recipient {
		t.Errorf("To = %v; want %s", row.To, recipient.Hex())
	}
	if row.GasUsed != 21000 {
		t.Errorf("GasUsed = %d; want 21000", row.GasUsed)
	}

	if data.Stats.TotalValue.Cmp(oneEth) != 0 {
		t.Errorf("TotalValue = %s; want %s", data.Stats.TotalValue, oneEth)
	}
	wantFees := new(big.Int).Mul(big.NewInt(21000), big.NewInt(1000000000))
	if data.Stats.TotalFees.Cmp(wantFees) != 0 {
		t.Errorf("TotalFees = %s; want %s", data.Stats.TotalFees, wantFees)
	}
	if data.Stats.BurntFees.Cmp(wantFees) != 0 {
		t.Errorf("BurntFees = %s; want %s", data.Stats.BurntFees, wantFees)
	}
	if data.Stats.BlobTxCount != 0 {
		t.Errorf("BlobTxCount = %d; want 0", data.Stats.BlobTxCount)
	}
}

func TestGetBlockEmpty_Integration(t *testing.T) {
	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getBlockByNumber":
			return blockJSON("0x1000", nil)
		case "eth_call":
			return stringArrayResult([]string{"builder.eth"})
		default:
			return "0x0"
		}
	})
	defer done()

	data, err := client.GetBlock(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if data.Info.TxCount != 0 || len(data.Txs) != 0 {
		t.Errorf("expected empty block, got %d txs", len(data.Txs))
	}
	if data.Info.MinerENS != "builder.eth" {
		t.Errorf("MinerENS = %q; want %q", data.Info.MinerENS, "builder.eth")
	}
	if data.Stats.TotalValue.Sign() != 0 {
		t.Errorf("TotalValue = %s; want 0", data.Stats.TotalValue)
	}
}

func TestGetBlockNotFound_Integration(t *testing.T) {
	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		return nil
	})
	defer done()

	_, err := client.GetBlock(context.Background(), big.NewInt(99999999))
	if err == nil {
		t.Fatal("expected error for missing block")
	}
}

func TestGetTransaction_Integration(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	recipient := common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")

	// transfer(recipient, 1.5 WETH)
	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	calldata := make([]byte, 4+32+32)
	copy(calldata[0:4], []byte{0xa9, 0x05, 0x9c, 0xbb})
	copy(calldata[4+12:4+32], recipient.Bytes())
	amount.FillBytes(calldata[36:68])

	tx := signedTx(t, key, &wethAddress, big.NewInt(0), calldata)

	transferLog := logJSON(wethAddress, []string{
		transferSig,
		addressResult(from),
		addressResult(recipient),
	}, uintResult(amount))

	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getTransactionByHash":
			return txJSON(t, tx, from, "0x1000")
		case "eth_getTransactionReceipt":
			return receiptJSON(tx.Hash(), "0xc350", "0x77359400", []interface{}{transferLog})
		case "eth_getBlockByNumber":
			return blockJSON("0x1000", nil)
		case "eth_call":
			call := params[0].(map[string]interface{})
			to := strings.ToLower(call["to"].(string))
			if to == strings.ToLower(ens.ReverseRecordsAddress.Hex()) {
				return stringArrayResult([]string{"alice.eth", ""})
			}
			return "0x"
		default:
			return "0x0"
		}
	})
	defer done()

	info, err := client.GetTransaction(context.Background(), tx.Hash())
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}

	if info.Status != models.StatusSuccess {
		t.Errorf("Status = %v; want success", info.Status)
	}
	if info.BlockNumber == nil || *info.BlockNumber != 0x1000 {
		t.Errorf("BlockNumber = %v; want 0x1000", info.BlockNumber)
	}
	if info.Timestamp != 0x5f5e1000 {
		t.Errorf("Timestamp = %d; want %d", info.Timestamp, 0x5f5e1000)
	}
	if info.From != from {
		t.Errorf("From = %s; want %s", info.From.Hex(), from.Hex())
	}
	if info.Type != models.TxDynamicFee {
		t.Errorf("Type = %v; want dynamic fee", info.Type)
	}
	if info.GasPrice != nil {
		t.Errorf("GasPrice = %v; want nil for a dynamic fee tx", info.GasPrice)
	}
	if info.MaxFee == nil || info.MaxFee.Int64() != 2000000000 {
		t.Errorf("MaxFee = %v; want 2000000000", info.MaxFee)
	}

	wantFee := new(big.Int).Mul(big.NewInt(50000), big.NewInt(2000000000))
	if info.ActualFee == nil || info.ActualFee.Cmp(wantFee) != 0 {
		t.Errorf("ActualFee = %v; want %s", info.ActualFee, wantFee)
	}

	if info.Method == nil {
		t.Fatal("Method = nil; want decoded transfer")
	}
	if info.Method.Name != "transfer" {
		t.Errorf("Method.Name = %q; want %q", info.Method.Name, "transfer")
	}
	if len(info.Method.Params) != 2 {
		t.Fatalf("len(Method.Params) = %d; want 2", len(info.Method.Params))
	}
	if info.Method.Params[0].Value != recipient.Hex() || !info.Method.Params[0].IsAddress {
		t.Errorf("Params[0] = %+v; want recipient address", info.Method.Params[0])
	}
	if info.Method.Params[1].Value != "1.5" {
		t.Errorf("Params[1].Value = %q; want %q", info.Method.Params[1].Value, "1.5")
	}

	if len(info.Transfers) != 1 {
		t.Fatalf("len(Transfers) = %d; want 1", len(info.Transfers))
	}
	tr := info.Transfers[0]
	if tr.Symbol != "WETH" || tr.Decimals != 18 {
		t.Errorf("transfer meta = %s/%d; want WETH/18", tr.Symbol, tr.Decimals)
	}
	if tr.From != from || tr.To != recipient {
		t.Errorf("transfer endpoints = %s -> %s", tr.From.Hex(), tr.To.Hex())
	}
	if tr.Amount.Cmp(amount) != 0 {
		t.Errorf("transfer amount = %s; want %s", tr.Amount, amount)
	}

	if len(info.Logs) != 1 {
		t.Fatalf("len(Logs) = %d; want 1", len(info.Logs))
	}
	lg := info.Logs[0]
	if lg.EventName != "Transfer" {
		t.Errorf("EventName = %q; want Transfer", lg.EventName)
	}
	if len(lg.Params) != 3 || lg.Params[2].Value != "1.5" {
		t.Errorf("log params = %+v; want value 1.5", lg.Params)
	}

	if info.FromENS != "alice.eth" {
		t.Errorf("FromENS = %q; want alice.eth", info.FromENS)
	}
	if info.ToENS != "" {
		t.Errorf("ToENS = %q; want empty", info.ToENS)
	}
}

func TestGetTransactionPending_Integration(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	recipient := common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	tx := signedTx(t, key, &recipient, big.NewInt(42), nil)

	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getTransactionByHash":
			return txJSON(t, tx, from, "")
		case "eth_call":
			return "0x"
		default:
			return nil
		}
	})
	defer done()

	info, err := client.GetTransaction(context.Background(), tx.Hash())
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if info.Status != models.StatusPending {
		t.Errorf("Status = %v; want pending", info.Status)
	}
	if info.BlockNumber != nil {
		t.Errorf("BlockNumber = %v; want nil", info.BlockNumber)
	}
	if info.GasUsed != 0 || info.ActualFee != nil {
		t.Errorf("pending tx should carry no receipt fields")
	}
	if len(info.Logs) != 0 || len(info.Transfers) != 0 {
		t.Errorf("pending tx should carry no logs")
	}
}

func TestGetTransactionUnknownTokenProbe_Integration(t *testing.T) {
	key, _ := crypto.GenerateKey()
	from := crypto.PubkeyToAddress(key.PublicKey)
	recipient := common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	token := common.HexToAddress("0x00000000000000000000000000000000000fbbbb")
	tx := signedTx(t, key, &token, big.NewInt(0), nil)

	mkLog := func(amount int64) map[string]interface{} {
		return logJSON(token, []string{
			transferSig,
			addressResult(from),
			addressResult(recipient),
		}, uintResult(big.NewInt(amount)))
	}

	symbolCalls := 0
	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getTransactionByHash":
			return txJSON(t, tx, from, "0x1000")
		case "eth_getTransactionReceipt":
			return receiptJSON(tx.Hash(), "0xc350", "0x77359400", []interface{}{mkLog(150000000), mkLog(25000000)})
		case "eth_getBlockByNumber":
			return blockJSON("0x1000", nil)
		case "eth_call":
			call := params[0].(map[string]interface{})
			to := strings.ToLower(call["to"].(string))
			input := call["input"].(string)
			if to != strings.ToLower(token.Hex()) {
				return "0x"
			}
			switch {
			case strings.HasPrefix(input, "0x95d89b41"): // symbol()
				symbolCalls++
				return stringResult("FAKE")
			case strings.HasPrefix(input, "0x313ce567"): // decimals()
				return uintResult(big.NewInt(8))
			}
			return "0x"
		default:
			return "0x0"
		}
	})
	defer done()

	info, err := client.GetTransaction(context.Background(), tx.Hash())
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if len(info.Transfers) != 2 {
		t.Fatalf("len(Transfers) = %d; want 2", len(info.Transfers))
	}
	for _, tr := range info.Transfers {
		if tr.Symbol != "FAKE" || tr.Decimals != 8 {
			t.Errorf("transfer meta = %s/%d; want FAKE/8", tr.Symbol, tr.Decimals)
		}
	}
	if symbolCalls != 1 {
		t.Errorf("symbol() probed %d times; want 1 (cached per token)", symbolCalls)
	}
}

func TestGetAddressContract_Integration(t *testing.T) {
	target := common.HexToAddress("0x00000000000000000000000000000000000ccccc")
	impl := common.HexToAddress("0x00000000000000000000000000000000000ddddd")
	owner := common.HexToAddress("0x00000000000000000000000000000000000eeeee")
	supply := big.NewInt(1000000000000)

	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getBalance":
			return "0xde0b6b3a7640000"
		case "eth_getTransactionCount":
			return "0x5"
		case "eth_getCode":
			return "0x6080604052"
		case "eth_getStorageAt":
			return addressResult(impl)
		case "eth_call":
			call := params[0].(map[string]interface{})
			to := strings.ToLower(call["to"].(string))
			input := call["input"].(string)
			if to != strings.ToLower(target.Hex()) {
				return "0x"
			}
			switch {
			case strings.HasPrefix(input, "0x06fdde03"): // name()
				return stringResult("Mock Dollar")
			case strings.HasPrefix(input, "0x95d89b41"): // symbol()
				return stringResult("USDX")
			case strings.HasPrefix(input, "0x313ce567"): // decimals()
				return uintResult(big.NewInt(6))
			case strings.HasPrefix(input, "0x18160ddd"): // totalSupply()
				return uintResult(supply)
			case strings.HasPrefix(input, "0x8da5cb5b"): // owner()
				return addressResult(owner)
			}
			return "0x"
		default:
			return "0x0"
		}
	})
	defer done()

	info, err := client.GetAddress(context.Background(), target)
	if err != nil {
		t.Fatalf("GetAddress: %v", err)
	}

	if !info.IsContract || info.CodeSize != 5 {
		t.Errorf("IsContract/CodeSize = %v/%d; want true/5", info.IsContract, info.CodeSize)
	}
	if info.Balance.Cmp(big.NewInt(1000000000000000000)) != 0 {
		t.Errorf("Balance = %s; want 1 ETH in wei", info.Balance)
	}
	if info.Nonce != 5 {
		t.Errorf("Nonce = %d; want 5", info.Nonce)
	}
	if info.Implementation == nil || *info.Implementation != impl {
		t.Errorf("Implementation = %v; want %s", info.Implementation, impl.Hex())
	}
	if info.Token == nil {
		t.Fatal("Token = nil; want ERC-20 detection")
	}
	if info.Token.Name != "Mock Dollar" || info.Token.Symbol != "USDX" || info.Token.Decimals != 6 {
		t.Errorf("Token = %+v", info.Token)
	}
	if info.Token.TotalSupply.Cmp(supply) != 0 {
		t.Errorf("TotalSupply = %s; want %s", info.Token.TotalSupply, supply)
	}
	if info.Owner == nil || *info.Owner != owner {
		t.Errorf("Owner = %v; want %s", info.Owner, owner.Hex())
	}
}

func TestGetAddressEOA_Integration(t *testing.T) {
	target := common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
	usdtAddress := common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	fiveWeth := new(big.Int).Mul(big.NewInt(5), big.NewInt(1000000000000000000))

	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_getBalance":
			return "0x0"
		case "eth_getTransactionCount":
			return "0x2a"
		case "eth_getCode":
			return "0x"
		case "eth_call":
			call := params[0].(map[string]interface{})
			to := strings.ToLower(call["to"].(string))
			input := call["input"].(string)
			if !strings.HasPrefix(input, "0x70a08231") { // balanceOf(address)
				if to == strings.ToLower(ens.ReverseRecordsAddress.Hex()) {
					return stringArrayResult([]string{"whale.eth"})
				}
				return "0x"
			}
			switch to {
			case strings.ToLower(wethAddress.Hex()):
				return uintResult(fiveWeth)
			case strings.ToLower(usdtAddress.Hex()):
				// one base unit of USDT, below the dust threshold
				return uintResult(big.NewInt(1))
			}
			return uintResult(big.NewInt(0))
		default:
			return "0x0"
		}
	})
	defer done()

	info, err := client.GetAddress(context.Background(), target)
	if err != nil {
		t.Fatalf("GetAddress: %v", err)
	}

	if info.IsContract {
		t.Error("IsContract = true; want false for empty code")
	}
	if info.Nonce != 42 {
		t.Errorf("Nonce = %d; want 42", info.Nonce)
	}
	if info.EnsName != "whale.eth" {
		t.Errorf("EnsName = %q; want whale.eth", info.EnsName)
	}
	if len(info.TokenBalances) != 1 {
		t.Fatalf("len(TokenBalances) = %d; want 1 (dust filtered)", len(info.TokenBalances))
	}
	tb := info.TokenBalances[0]
	if tb.Symbol != "WETH" || tb.Balance.Cmp(fiveWeth) != 0 {
		t.Errorf("holding = %s %s; want 5 WETH in wei", tb.Balance, tb.Symbol)
	}
}

func TestGetNetworkInfo_Integration(t *testing.T) {
	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		switch method {
		case "eth_blockNumber":
			return "0x1312d00"
		case "eth_gasPrice":
			return "0x6fc23ac00"
		case "web3_clientVersion":
			return "Geth/v1.16.7-stable"
		case "eth_feeHistory":
			baseFees := make([]string, 6)
			for i := range baseFees {
				baseFees[i] = "0x3b9aca00"
			}
			rewards := make([][]string, 5)
			for i := range rewards {
				rewards[i] = []string{"0x3b9aca00", "0x77359400", "0xb2d05e00"}
			}
			return map[string]interface{}{
				"oldestBlock":   "0x1312cfb",
				"baseFeePerGas": baseFees,
				"gasUsedRatio":  []float64{0.4, 0.5, 0.6, 0.5, 0.4},
				"reward":        rewards,
			}
		default:
			return "0x0"
		}
	})
	defer done()

	info, err := client.GetNetworkInfo(context.Background())
	if err != nil {
		t.Fatalf("GetNetworkInfo: %v", err)
	}

	if info.LatestBlock != 20000000 {
		t.Errorf("LatestBlock = %d; want 20000000", info.LatestBlock)
	}
	if info.GasPrice.Int64() != 30000000000 {
		t.Errorf("GasPrice = %s; want 30000000000", info.GasPrice)
	}
	if info.ClientVersion != "Geth/v1.16.7-stable" {
		t.Errorf("ClientVersion = %q", info.ClientVersion)
	}
	if len(info.BaseFeeTrend) != 6 {
		t.Fatalf("len(BaseFeeTrend) = %d; want 6", len(info.BaseFeeTrend))
	}
	if info.BaseFeeTrend[0] != 1.0 {
		t.Errorf("BaseFeeTrend[0] = %f; want 1.0", info.BaseFeeTrend[0])
	}
	want := [3]float64{1.0, 2.0, 3.0}
	if info.PriorityFees != want {
		t.Errorf("PriorityFees = %v; want %v", info.PriorityFees, want)
	}
}

func TestResolveEns_Integration(t *testing.T) {
	resolver := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	resolved := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		if method != "eth_call" {
			return "0x0"
		}
		call := params[0].(map[string]interface{})
		to := strings.ToLower(call["to"].(string))
		switch to {
		case strings.ToLower(ens.RegistryAddress.Hex()):
			return addressResult(resolver)
		case strings.ToLower(resolver.Hex()):
			return addressResult(resolved)
		}
		return "0x"
	})
	defer done()

	addr, err := client.ResolveEns(context.Background(), "vitalik.eth")
	if err != nil {
		t.Fatalf("ResolveEns: %v", err)
	}
	if addr != resolved {
		t.Errorf("resolved = %s; want %s", addr.Hex(), resolved.Hex())
	}
}

func TestResolveEnsNoResolver_Integration(t *testing.T) {
	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		if method == "eth_call" {
			return addressResult(common.Address{})
		}
		return "0x0"
	})
	defer done()

	_, err := client.ResolveEns(context.Background(), "nobody.eth")
	if err == nil || !strings.Contains(err.Error(), "no resolver") {
		t.Errorf("err = %v; want no resolver error", err)
	}
}

func TestLookupEnsNames_Integration(t *testing.T) {
	client, done := newTestClient(t, func(method string, params []interface{}) interface{} {
		if method == "eth_call" {
			return stringArrayResult([]string{"alice.eth", ""})
		}
		return "0x0"
	})
	defer done()

	names, err := client.LookupEnsNames(context.Background(), []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	})
	if err != nil {
		t.Fatalf("LookupEnsNames: %v", err)
	}
	if len(names) != 2 || names[0] != "alice.eth" || names[1] != "" {
		t.Errorf("names = %v; want [alice.eth, \"\"]", names)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("503 Service Unavailable"), true},
		{errors.New("request timeout"), true},
		{errors.New("execution reverted"), false},
		{errors.New("not found"), false},
	}
	for _, tc := range cases {
		if got := retryable(tc.err); got != tc.want {
			t.Errorf("retryable(%v) = %v; want %v", tc.err, got, tc.want)
		}
	}
}

func TestWithRetry(t *testing.T) {
	oldDelay := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = oldDelay }()

	attempts := 0
	err := withRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("429 too many requests")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d; want 3", attempts)
	}

	attempts = 0
	err = withRetry(context.Background(), func() error {
		attempts++
		return errors.New("execution reverted")
	})
	if err == nil || attempts != 1 {
		t.Errorf("non-retryable: err = %v, attempts = %d; want immediate failure", err, attempts)
	}

	attempts = 0
	err = withRetry(context.Background(), func() error {
		attempts++
		return errors.New("request timeout")
	})
	if err == nil || attempts != retryAttempts {
		t.Errorf("exhausted: err = %v, attempts = %d; want %d attempts", err, attempts, retryAttempts)
	}
}

func TestDecodeReturnString(t *testing.T) {
	if got := decodeReturnString(padRight([]byte("MKR"))); got != "MKR" {
		t.Errorf("bytes32 = %q; want MKR", got)
	}

	buf := append(word(32), word(10)...)
	buf = append(buf, padRight([]byte("Dai Stable"))...)
	if got := decodeReturnString(buf); got != "Dai Stable" {
		t.Errorf("string = %q; want Dai Stable", got)
	}

	if got := decodeReturnString([]byte{0x01, 0x02}); got != "" {
		t.Errorf("short = %q; want empty", got)
	}

	bogus := append(word(1<<40), word(4)...)
	if got := decodeReturnString(bogus); got != "" {
		t.Errorf("bogus offset = %q; want empty", got)
	}
}

func TestDecodeStringArray(t *testing.T) {
	ret, _ := hex.DecodeString(strings.TrimPrefix(stringArrayResult([]string{"a.eth", "", "bb.eth"}), "0x"))
	names := decodeStringArray(ret, 3)
	want := []string{"a.eth", "", "bb.eth"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q; want %q", i, names[i], want[i])
		}
	}

	names = decodeStringArray(nil, 2)
	if len(names) != 2 || names[0] != "" || names[1] != "" {
		t.Errorf("malformed input should degrade to empty names, got %v", names)
	}
}
