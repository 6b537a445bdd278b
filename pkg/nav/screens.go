package nav

import (
	"github.com/ethereum/go-ethereum/common"

	"evmex/pkg/models"
)

// ScreenKind discriminates the Screen tagged union.
type ScreenKind uint8

const (
	KindHome ScreenKind = iota
	KindBlock
	KindTransaction
	KindAddress
	KindError
	KindLoading
)

// Screen is what the terminal currently shows. Exactly one screen is
// current at a time; screens are replaced on navigation, never mutated
// in place (cursor and scroll fields excepted).
type Screen interface {
	Kind() ScreenKind
}

type HomeScreen struct{}

func (*HomeScreen) Kind() ScreenKind { return KindHome }

type LoadingScreen struct {
	Message string
}

func (*LoadingScreen) Kind() ScreenKind { return KindLoading }

type ErrorScreen struct {
	Message string
}

func (*ErrorScreen) Kind() ScreenKind { return KindError }

// BlockMode selects between the block's transaction list and its
// header info. The zero value is the list, which is where a block
// query lands.
type BlockMode uint8

const (
	ModeList BlockMode = iota
	ModeInfo
)

type BlockScreen struct {
	Info   models.BlockInfo
	Txs    []models.TxSummary
	Stats  models.BlockStats
	Mode   BlockMode
	Cursor int
	Scroll int
}

func (*BlockScreen) Kind() ScreenKind { return KindBlock }

type TxScreen struct {
	Info           models.TxInfo
	Cursor         int
	TransferScroll int
	LogScroll      int
}

func (*TxScreen) Kind() ScreenKind { return KindTransaction }

// fixedLinkCount is the number of links before the transfer section.
func (t *TxScreen) fixedLinkCount() int {
	n := 1
	if t.Info.To != nil {
		n++
	}
	if t.Info.BlockNumber != nil {
		n++
	}
	if t.Info.ContractCreated != nil {
		n++
	}
	return n
}

type AddressScreen struct {
	Info   models.AddressInfo
	Cursor int
}

func (*AddressScreen) Kind() ScreenKind { return KindAddress }

// LinkKind tags a resolved navigation target.
type LinkKind uint8

const (
	LinkAddress LinkKind = iota
	LinkTransaction
	LinkBlock
)

// NavLink is a resolved navigation target, computed on demand from the
// current screen and cursor; never stored.
type NavLink struct {
	Kind        LinkKind
	Address     common.Address
	TxHash      common.Hash
	BlockNumber uint64
}

// screenLinks enumerates a screen's navigable targets in display order.
// LinkCount and ResolveSelectedLink both read this single walk so the
// two can never drift apart.
func screenLinks(s Screen) []NavLink {
	switch v := s.(type) {
	case *BlockScreen:
		if v.Mode == ModeList {
			links := make([]NavLink, 0, len(v.Txs))
			for _, tx := range v.Txs {
				links = append(links, NavLink{Kind: LinkTransaction, TxHash: tx.Hash})
			}
			return links
		}
		if v.Info.Number > 0 {
			return []NavLink{{Kind: LinkBlock, BlockNumber: v.Info.Number - 1}}
		}
		return nil
	case *TxScreen:
		links := []NavLink{{Kind: LinkAddress, Address: v.Info.From}}
		if v.Info.To != nil {
			links = append(links, NavLink{Kind: LinkAddress, Address: *v.Info.To})
		}
		if v.Info.BlockNumber != nil {
			links = append(links, NavLink{Kind: LinkBlock, BlockNumber: *v.Info.BlockNumber})
		}
		if v.Info.ContractCreated != nil {
			links = append(links, NavLink{Kind: LinkAddress, Address: *v.Info.ContractCreated})
		}
		for _, tr := range v.Info.Transfers {
			links = append(links, NavLink{Kind: LinkAddress, Address: tr.To})
		}
		for _, lg := range v.Info.Logs {
			for _, p := range lg.Params {
				if p.IsAddress {
					links = append(links, NavLink{Kind: LinkAddress, Address: common.HexToAddress(p.Value)})
				}
			}
		}
		return links
	case *AddressScreen:
		if v.Info.Implementation != nil {
			return []NavLink{{Kind: LinkAddress, Address: *v.Info.Implementation}}
		}
		return nil
	default:
		return nil
	}
}

func addressParamCount(lg models.DecodedLog) int {
	n := 0
	for _, p := range lg.Params {
		if p.IsAddress {
			n++
		}
	}
	return n
}
