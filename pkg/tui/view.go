package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"evmex/pkg/format"
	"evmex/pkg/models"
	"evmex/pkg/nav"
)

const banner = `
███████╗██╗   ██╗███╗   ███╗███████╗██╗  ██╗
██╔════╝██║   ██║████╗ ████║██╔════╝╚██╗██╔╝
█████╗  ██║   ██║██╔████╔██║█████╗   ╚███╔╝
██╔══╝  ╚██╗ ██╔╝██║╚██╔╝██║██╔══╝   ██╔██╗
███████╗ ╚████╔╝ ██║ ╚═╝ ██║███████╗██╔╝ ██╗
╚══════╝  ╚═══╝  ╚═╝     ╚═╝╚══════╝╚═╝  ╚═╝`

const (
	homeFooter  = "Enter:search • ↑↓:recent • del:remove • esc:quit"
	navFooter   = "↑↓:links • Enter:open • c:copy • b:back • h:home • esc:quit"
	blockFooter = "↑↓:links • Enter:open • Tab:info/txs • c:copy • b:back • h:home • esc:quit"
	waitFooter  = "b:back • h:home • esc:quit"
)

func (m model) View() string {
	switch scr := m.nav.Current().(type) {
	case *nav.LoadingScreen:
		return m.viewLoading(scr)
	case *nav.ErrorScreen:
		return m.viewError(scr)
	case *nav.BlockScreen:
		return m.viewBlock(scr)
	case *nav.TxScreen:
		return m.viewTx(scr)
	case *nav.AddressScreen:
		return m.viewAddress(scr)
	default:
		return m.viewHome()
	}
}

// place centers the content with the footer below it, slotting a
// transient status line between the two when one is set.
func (m model) place(content, footer string) string {
	f := subtleStyle.Render(footer)
	if m.statusMessage != "" {
		f = lipgloss.JoinVertical(lipgloss.Center, infoStyle.Render(m.statusMessage), f)
	}
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, content, "\n", f),
	)
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// link renders a navigable value, highlighted when the cursor is on it.
func (m model) link(text string, idx int) string {
	if m.nav.Cursor() == idx {
		return selectedStyle.Render(text)
	}
	return linkStyle.Render(text)
}

func (m model) viewHome() string {
	header := lipgloss.JoinVertical(lipgloss.Center,
		bannerStyle.Render(strings.TrimPrefix(banner, "\n")),
		subtleStyle.Render("a read-only Ethereum explorer for your terminal"),
	)

	search := boxStyle.Render(m.searchInput.View())

	sections := []string{header, "\n", search, "\n", m.networkPanel()}

	if len(m.cfg.RecentSearches) > 0 {
		rows := []string{tableHeaderStyle.Render("Recent searches")}
		for i, q := range m.cfg.RecentSearches {
			if i == m.recentIdx {
				rows = append(rows, selectedStyle.Render("> "+q))
			} else {
				rows = append(rows, "  "+q)
			}
		}
		sections = append(sections, "\n", lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return m.place(content, homeFooter+fmt.Sprintf(" • v%s", Version))
}

func (m model) networkPanel() string {
	if m.network == nil {
		return boxStyle.Render(subtleStyle.Render("waiting for network data..."))
	}

	n := m.network
	rows := []string{
		row("Latest block", format.AddCommas(strconv.FormatUint(n.LatestBlock, 10))),
		row("Gas price", format.Gwei(n.GasPrice)),
		row("Priority fees", fmt.Sprintf("%s / %s / %s gwei",
			format.FormatFloat(n.PriorityFees[0], 2),
			format.FormatFloat(n.PriorityFees[1], 2),
			format.FormatFloat(n.PriorityFees[2], 2))),
	}
	if n.ClientVersion != "" {
		rows = append(rows, row("Client", n.ClientVersion))
	}

	panel := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if len(n.BaseFeeTrend) > 1 {
		graph := asciigraph.Plot(n.BaseFeeTrend,
			asciigraph.Height(5),
			asciigraph.Width(44),
			asciigraph.Caption("Base fee (gwei)"),
		)
		panel = lipgloss.JoinVertical(lipgloss.Left, panel, "", subtleStyle.Render(graph))
	}
	return boxStyle.Render(panel)
}

func (m model) viewLoading(scr *nav.LoadingScreen) string {
	content := boxStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), scr.Message))
	return m.place(content, waitFooter)
}

func (m model) viewError(scr *nav.ErrorScreen) string {
	content := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		errStyle.Render("Lookup failed"),
		"",
		scr.Message,
	))
	return m.place(content, waitFooter)
}

func (m model) viewBlock(scr *nav.BlockScreen) string {
	title := titleStyle.Render("Block " + format.AddCommas(strconv.FormatUint(scr.Info.Number, 10)))

	var body string
	if scr.Mode == nav.ModeInfo {
		body = m.blockInfoPanel(scr)
	} else {
		body = m.blockTxList(scr)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, title, "\n", boxStyle.Render(body))
	return m.place(content, blockFooter)
}

func (m model) blockInfoPanel(scr *nav.BlockScreen) string {
	info := scr.Info

	miner := format.AddressWithENS(info.Miner.Hex(), info.MinerENS)
	if info.BuilderTag != "" {
		miner += " " + infoStyle.Render("["+info.BuilderTag+"]")
	}

	parent := format.TruncateHash(info.ParentHash.Hex())
	if info.Number > 0 {
		parent = m.link(parent, 0)
	}

	rows := []string{
		row("Hash", info.Hash.Hex()),
		row("Parent", parent),
		row("Timestamp", timestamp(info.Timestamp)),
		row("Miner", miner),
		row("Gas used", gasUsage(info.GasUsed, info.GasLimit)),
	}
	if info.BaseFee != nil {
		rows = append(rows, row("Base fee", format.Gwei(info.BaseFee)))
	}
	if len(info.ExtraData) > 0 {
		rows = append(rows, row("Extra data", extraData(info.ExtraData)))
	}
	if info.BlobGasUsed != nil {
		rows = append(rows, row("Blob gas", format.AddCommas(strconv.FormatUint(*info.BlobGasUsed, 10))))
	}
	rows = append(rows,
		row("Withdrawals", strconv.Itoa(info.WithdrawalsCount)),
		row("Transactions", strconv.Itoa(info.TxCount)),
		"",
		row("Total value", format.Eth(scr.Stats.TotalValue)),
		row("Total fees", format.Eth(scr.Stats.TotalFees)),
		row("Burnt fees", format.Eth(scr.Stats.BurntFees)),
	)
	if scr.Stats.BlobTxCount > 0 {
		rows = append(rows, row("Blob txs", strconv.Itoa(scr.Stats.BlobTxCount)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) blockTxList(scr *nav.BlockScreen) string {
	if len(scr.Txs) == 0 {
		return subtleStyle.Render("No transactions in this block")
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("  %-19s %-19s %-19s %20s %8s", "HASH", "FROM", "TO", "VALUE", "GAS"))
	rows := []string{header}

	end := scr.Scroll + nav.BlockViewport
	if end > len(scr.Txs) {
		end = len(scr.Txs)
	}
	for i := scr.Scroll; i < end; i++ {
		tx := scr.Txs[i]
		to := "contract creation"
		if tx.To != nil {
			to = format.AddrFixedWidth(tx.To.Hex(), "")
		}
		line := fmt.Sprintf("%-19s %-19s %-19s %20s %8s",
			format.TruncateHash(tx.Hash.Hex()),
			format.AddrFixedWidth(tx.From.Hex(), ""),
			to,
			format.Eth(tx.Value),
			format.Gas(tx.GasUsed),
		)
		if i == scr.Cursor {
			rows = append(rows, selectedStyle.Render("> "+line))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	if len(scr.Txs) > nav.BlockViewport {
		rows = append(rows, "", subtleStyle.Render(fmt.Sprintf("showing %d-%d of %d", scr.Scroll+1, end, len(scr.Txs))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) viewTx(scr *nav.TxScreen) string {
	info := scr.Info
	title := titleStyle.Render("Transaction")

	// Link indices mirror the order links are walked: from, to, block,
	// created contract, transfer recipients, log address params.
	idx := 0
	fromIdx := idx
	idx++
	toIdx := -1
	if info.To != nil {
		toIdx = idx
		idx++
	}
	blockIdx := -1
	if info.BlockNumber != nil {
		blockIdx = idx
		idx++
	}
	createdIdx := -1
	if info.ContractCreated != nil {
		createdIdx = idx
		idx++
	}
	transferBase := idx
	logBase := transferBase + len(info.Transfers)

	rows := []string{
		row("Hash", info.Hash.Hex()),
		row("Status", txStatus(info.Status)),
	}
	if info.BlockNumber != nil {
		rows = append(rows, row("Block", m.link(format.AddCommas(strconv.FormatUint(*info.BlockNumber, 10)), blockIdx)))
	}
	if info.Timestamp > 0 {
		rows = append(rows, row("Timestamp", timestamp(info.Timestamp)))
	}
	rows = append(rows, row("From", m.link(format.AddressWithENS(info.From.Hex(), info.FromENS), fromIdx)))
	if info.To != nil {
		rows = append(rows, row("To", m.link(format.AddressWithENS(info.To.Hex(), info.ToENS), toIdx)))
	} else if info.ContractCreated == nil {
		rows = append(rows, row("To", subtleStyle.Render("contract creation")))
	}
	if info.ContractCreated != nil {
		rows = append(rows, row("Created", m.link(format.TruncateHash(info.ContractCreated.Hex()), createdIdx)))
	}
	rows = append(rows, row("Value", format.Eth(info.Value)))

	if info.GasUsed > 0 {
		rows = append(rows, row("Gas used", gasUsage(info.GasUsed, info.GasLimit)))
	} else {
		rows = append(rows, row("Gas limit", format.Gas(info.GasLimit)))
	}
	if info.MaxFee != nil {
		fee := format.Gwei(info.MaxFee)
		if info.MaxPriorityFee != nil {
			fee += fmt.Sprintf(" (tip %s)", format.Gwei(info.MaxPriorityFee))
		}
		rows = append(rows, row("Max fee", fee))
	} else if info.GasPrice != nil {
		rows = append(rows, row("Gas price", format.Gwei(info.GasPrice)))
	}
	if info.ActualFee != nil {
		rows = append(rows, row("Fee paid", format.Eth(info.ActualFee)))
	}
	rows = append(rows,
		row("Nonce", strconv.FormatUint(info.Nonce, 10)),
		row("Type", info.Type.String()),
	)
	if info.AccessListSize > 0 {
		rows = append(rows, row("Access list", fmt.Sprintf("%d entries", info.AccessListSize)))
	}
	if len(info.BlobHashes) > 0 {
		blobs := make([]string, 0, len(info.BlobHashes))
		for _, h := range info.BlobHashes {
			blobs = append(blobs, format.TruncateHash(h.Hex()))
		}
		rows = append(rows, row("Blobs", strings.Join(blobs, ", ")))
	}
	if info.InputSize > 0 {
		rows = append(rows, row("Input", fmt.Sprintf("%s bytes", format.AddCommas(strconv.Itoa(info.InputSize)))))
	}

	if method := methodSection(info); method != "" {
		rows = append(rows, "", method)
	}

	sections := []string{lipgloss.JoinVertical(lipgloss.Left, rows...)}
	if len(info.Transfers) > 0 {
		sections = append(sections, "", m.transferSection(scr, transferBase))
	}
	if len(info.Logs) > 0 {
		sections = append(sections, "", m.logSection(scr, logBase))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	content := lipgloss.JoinVertical(lipgloss.Center, title, "\n", boxStyle.Render(body))
	return m.place(content, navFooter)
}

func txStatus(s models.TxStatus) string {
	switch s {
	case models.StatusSuccess:
		return infoStyle.Render(s.String())
	case models.StatusFailed:
		return errStyle.Render(s.String())
	default:
		return warnStyle.Render(s.String())
	}
}

func methodSection(info models.TxInfo) string {
	if info.InputSize == 0 {
		return ""
	}
	if info.Method == nil {
		return row("Method", subtleStyle.Render("unknown selector"))
	}

	rows := []string{
		row("Method", tableHeaderStyle.Render(info.Method.Name)),
		row("", subtleStyle.Render(info.Method.Signature)),
	}
	for _, p := range info.Method.Params {
		v := p.Value
		if p.IsAddress {
			v = format.TruncateHash(v)
		}
		rows = append(rows, row("", fmt.Sprintf("%s: %s", p.Name, v)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) transferSection(scr *nav.TxScreen, base int) string {
	transfers := scr.Info.Transfers
	rows := []string{tableHeaderStyle.Render(fmt.Sprintf("Token transfers (%d)", len(transfers)))}

	end := scr.TransferScroll + nav.TransferViewport
	if end > len(transfers) {
		end = len(transfers)
	}
	for i := scr.TransferScroll; i < end; i++ {
		tr := transfers[i]
		amount := format.TokenAmount(tr.Amount, tr.Decimals)
		if tr.Symbol != "" {
			amount += " " + tr.Symbol
		}
		rows = append(rows, fmt.Sprintf("  %s  %s → %s",
			infoStyle.Render(amount),
			format.TruncateHash(tr.From.Hex()),
			m.link(format.TruncateHash(tr.To.Hex()), base+i),
		))
	}
	if len(transfers) > nav.TransferViewport {
		rows = append(rows, subtleStyle.Render(fmt.Sprintf("  showing %d-%d of %d", scr.TransferScroll+1, end, len(transfers))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) logSection(scr *nav.TxScreen, base int) string {
	logs := scr.Info.Logs
	rows := []string{tableHeaderStyle.Render(fmt.Sprintf("Logs (%d)", len(logs)))}

	// Address params link sequentially across every log, scrolled out
	// or not, so indices line up with the cursor walk.
	starts := make([]int, len(logs))
	next := base
	for i, lg := range logs {
		starts[i] = next
		for _, p := range lg.Params {
			if p.IsAddress {
				next++
			}
		}
	}

	end := scr.LogScroll + nav.LogViewport
	if end > len(logs) {
		end = len(logs)
	}
	for i := scr.LogScroll; i < end; i++ {
		rows = append(rows, m.renderLog(logs[i], starts[i]))
	}
	if len(logs) > nav.LogViewport {
		rows = append(rows, subtleStyle.Render(fmt.Sprintf("  showing %d-%d of %d", scr.LogScroll+1, end, len(logs))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) renderLog(lg models.DecodedLog, linkIdx int) string {
	name := lg.EventName
	if name == "" {
		name = "unknown event"
	}
	header := fmt.Sprintf("  %s %s", tableHeaderStyle.Render(name), subtleStyle.Render(format.TruncateHash(lg.Address.Hex())))

	var parts []string
	for _, p := range lg.Params {
		v := p.Value
		if p.IsAddress {
			v = m.link(format.TruncateHash(v), linkIdx)
			linkIdx++
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, v))
	}
	if len(parts) == 0 {
		return header
	}
	return header + "\n    " + strings.Join(parts, "  ")
}

func (m model) viewAddress(scr *nav.AddressScreen) string {
	info := scr.Info

	kind := "Address"
	if info.IsContract {
		kind = "Contract"
		if info.Token != nil {
			kind = "Token contract"
		}
	}
	title := titleStyle.Render(kind)

	rows := []string{row("Address", info.Address.Hex())}
	if info.EnsName != "" {
		rows = append(rows, row("ENS", infoStyle.Render(info.EnsName)))
	}
	rows = append(rows,
		row("Balance", format.Eth(info.Balance)),
		row("Nonce", strconv.FormatUint(info.Nonce, 10)),
	)
	if info.IsContract {
		rows = append(rows, row("Code size", fmt.Sprintf("%s bytes", format.AddCommas(strconv.Itoa(info.CodeSize)))))
		if info.Implementation != nil {
			rows = append(rows, row("Implementation", m.link(format.TruncateHash(info.Implementation.Hex()), 0)+subtleStyle.Render(" (proxy)")))
		}
		if info.Owner != nil {
			rows = append(rows, row("Owner", format.TruncateHash(info.Owner.Hex())))
		}
	}
	if info.Token != nil {
		name := info.Token.Name
		if name == "" {
			name = info.Token.Symbol
		}
		rows = append(rows, "",
			row("Token", fmt.Sprintf("%s (%s)", name, info.Token.Symbol)),
			row("Decimals", strconv.Itoa(int(info.Token.Decimals))),
		)
		if info.Token.TotalSupply != nil {
			supply := format.TokenAmount(info.Token.TotalSupply, info.Token.Decimals)
			rows = append(rows, row("Total supply", supply+" "+info.Token.Symbol))
		}
	}
	if len(info.TokenBalances) > 0 {
		rows = append(rows, "", tableHeaderStyle.Render(fmt.Sprintf("Token holdings (%d)", len(info.TokenBalances))))
		for _, tb := range info.TokenBalances {
			rows = append(rows, fmt.Sprintf("  %s %s  %s",
				format.TokenAmount(tb.Balance, tb.Decimals),
				tb.Symbol,
				subtleStyle.Render(format.TruncateHash(tb.Token.Hex())),
			))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center, title, "\n", boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return m.place(content, navFooter)
}

func gasUsage(used, limit uint64) string {
	if limit == 0 {
		return format.Gas(used)
	}
	pct := float64(used) / float64(limit) * 100
	return fmt.Sprintf("%s / %s (%.1f%%)", format.Gas(used), format.Gas(limit), pct)
}

func timestamp(ts uint64) string {
	t := time.Unix(int64(ts), 0).UTC()
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02 15:04:05 UTC"), format.Timestamp(ts, time.Now()))
}

func extraData(b []byte) string {
	printable := len(b) > 0
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			printable = false
			break
		}
	}
	if printable {
		return string(b)
	}
	return format.TruncateHash(format.HexEncode(b))
}
