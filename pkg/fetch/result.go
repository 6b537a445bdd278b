package fetch

import (
	"evmex/pkg/models"
	"evmex/pkg/query"
)

// Result is one completed fetch, broadcast to all subscribers. Exactly one
// payload pointer is set on success; Err is set on failure. Seq 0 marks
// background network refreshes, which only the home screen applies.
type Result struct {
	Seq   uint64
	Query string
	Kind  query.Kind

	Block   *models.BlockData
	Tx      *models.TxInfo
	Address *models.AddressInfo
	Network *models.NetworkInfo

	Err error
}

// Subscriber is a channel that receives fetch results.
type Subscriber chan Result
