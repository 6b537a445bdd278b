package rpc

import (
	"context"
	"math/big"

	"evmex/pkg/decode"
	"evmex/pkg/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GetTransaction fetches a transaction and, when mined, its receipt. Calldata
// and logs are decoded best-effort: unknown selectors leave Method nil and
// unknown events fall back to generic parameters.
func (c *Client) GetTransaction(ctx context.Context, hash common.Hash) (*models.TxInfo, error) {
	var (
		tx      *types.Transaction
		pending bool
	)
	err := withRetry(ctx, func() error {
		var err error
		tx, pending, err = c.eth.TransactionByHash(ctx, hash)
		return err
	})
	if err != nil {
		return nil, err
	}

	from, _ := types.Sender(c.signer, tx)

	info := &models.TxInfo{
		Hash:           hash,
		Status:         models.StatusPending,
		From:           from,
		To:             tx.To(),
		Value:          tx.Value(),
		Nonce:          tx.Nonce(),
		GasLimit:       tx.Gas(),
		Type:           models.TxTypeFromByte(tx.Type()),
		InputSize:      len(tx.Data()),
		AccessListSize: len(tx.AccessList()),
		BlobHashes:     tx.BlobHashes(),
	}
	if tx.Type() >= types.DynamicFeeTxType {
		info.MaxFee = tx.GasFeeCap()
		info.MaxPriorityFee = tx.GasTipCap()
	} else {
		info.GasPrice = tx.GasPrice()
	}

	if data := tx.Data(); len(data) >= 4 {
		var token *decode.Token
		if tx.To() != nil {
			if t, ok := decode.TokenByAddress(*tx.To()); ok {
				token = &t
			}
		}
		info.Method = decode.Method(data, token)
	}

	if !pending {
		var receipt *types.Receipt
		err = withRetry(ctx, func() error {
			var err error
			receipt, err = c.eth.TransactionReceipt(ctx, hash)
			return err
		})
		if err != nil {
			return nil, err
		}
		c.applyReceipt(ctx, info, receipt)
	}

	addrs := []common.Address{from}
	if tx.To() != nil {
		addrs = append(addrs, *tx.To())
	}
	if names, err := c.LookupEnsNames(ctx, addrs); err == nil && len(names) == len(addrs) {
		info.FromENS = names[0]
		if len(names) > 1 {
			info.ToENS = names[1]
		}
	}

	return info, nil
}

func (c *Client) applyReceipt(ctx context.Context, info *models.TxInfo, receipt *types.Receipt) {
	if receipt.Status == types.ReceiptStatusSuccessful {
		info.Status = models.StatusSuccess
	} else {
		info.Status = models.StatusFailed
	}

	if receipt.BlockNumber != nil {
		n := receipt.BlockNumber.Uint64()
		info.BlockNumber = &n

		// Timestamp is best-effort; the view treats zero as unknown.
		var header *types.Header
		err := withRetry(ctx, func() error {
			var err error
			header, err = c.eth.HeaderByNumber(ctx, receipt.BlockNumber)
			return err
		})
		if err == nil {
			info.Timestamp = header.Time
		}
	}

	info.GasUsed = receipt.GasUsed
	if receipt.EffectiveGasPrice != nil {
		gasUsed := new(big.Int).SetUint64(receipt.GasUsed)
		info.ActualFee = new(big.Int).Mul(gasUsed, receipt.EffectiveGasPrice)
	}
	if receipt.ContractAddress != (common.Address{}) {
		created := receipt.ContractAddress
		info.ContractCreated = &created
	}

	info.Transfers = c.extractTransfers(ctx, receipt.Logs)
	info.Logs = decodeLogs(receipt.Logs)
}

// extractTransfers pulls ERC-20 Transfer events out of the receipt logs.
// Symbol and decimals come from the curated registry, or from probing the
// token contract once per unknown token.
func (c *Client) extractTransfers(ctx context.Context, logs []*types.Log) []models.TokenTransfer {
	type tokenMeta struct {
		symbol   string
		decimals uint8
	}
	cache := make(map[common.Address]tokenMeta)

	var transfers []models.TokenTransfer
	for _, lg := range logs {
		if len(lg.Topics) < 3 || lg.Topics[0] != decode.TransferTopic || len(lg.Data) < 32 {
			continue
		}
		meta, ok := cache[lg.Address]
		if !ok {
			symbol, decimals := c.tokenMetadata(ctx, lg.Address)
			meta = tokenMeta{symbol: symbol, decimals: decimals}
			cache[lg.Address] = meta
		}
		transfers = append(transfers, models.TokenTransfer{
			Token:    lg.Address,
			From:     common.BytesToAddress(lg.Topics[1].Bytes()),
			To:       common.BytesToAddress(lg.Topics[2].Bytes()),
			Amount:   new(big.Int).SetBytes(lg.Data[:32]),
			Symbol:   meta.symbol,
			Decimals: meta.decimals,
		})
	}
	return transfers
}

func decodeLogs(logs []*types.Log) []models.DecodedLog {
	decoded := make([]models.DecodedLog, 0, len(logs))
	for _, lg := range logs {
		dl := models.DecodedLog{Address: lg.Address, Topics: lg.Topics, Data: lg.Data}

		var sig decode.EventSig
		var known bool
		if len(lg.Topics) > 0 {
			sig, known = decode.LookupEvent(lg.Topics[0])
		}
		if known {
			dl.EventName = sig.Name
		}
		if known && sig.HasLayout() {
			dl.Params = decode.Log(lg.Address, lg.Topics, lg.Data, sig)
		} else {
			dl.Params = decode.GenericLog(lg.Topics, lg.Data)
		}
		decoded = append(decoded, dl)
	}
	return decoded
}
