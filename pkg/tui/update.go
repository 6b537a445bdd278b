package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"evmex/pkg/config"
	"evmex/pkg/fetch"
	"evmex/pkg/format"
	"evmex/pkg/nav"
	"evmex/pkg/query"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case fetch.Result:
		// Re-arm the subscription before anything else.
		cmds = append(cmds, listenForResults(m.sub))

		if msg.Seq == 0 {
			if msg.Err == nil && msg.Network != nil {
				m.network = msg.Network
			}
			break
		}
		if msg.Seq != m.lastSeq {
			// A newer query superseded this fetch.
			break
		}

		switch {
		case msg.Err != nil:
			m.nav.SetError(msg.Err.Error())
		case msg.Block != nil:
			m.nav.Push(&nav.BlockScreen{Info: msg.Block.Info, Txs: msg.Block.Txs, Stats: msg.Block.Stats})
		case msg.Tx != nil:
			m.nav.Push(&nav.TxScreen{Info: *msg.Tx})
		case msg.Address != nil:
			m.nav.Push(&nav.AddressScreen{Info: *msg.Address})
		}

	case tea.KeyMsg:
		if m.onHome() {
			switch msg.String() {
			case "ctrl+c", "esc":
				return m, tea.Quit
			case "enter":
				raw := strings.TrimSpace(m.searchInput.Value())
				if raw == "" && len(m.cfg.RecentSearches) > 0 {
					raw = m.cfg.RecentSearches[m.recentIdx]
				}
				if raw != "" {
					cmds = append(cmds, m.submitQuery(raw))
				}
			case "up":
				if n := len(m.cfg.RecentSearches); n > 0 {
					m.recentIdx = (m.recentIdx - 1 + n) % n
				}
			case "down":
				if n := len(m.cfg.RecentSearches); n > 0 {
					m.recentIdx = (m.recentIdx + 1) % n
				}
			case "delete":
				if len(m.cfg.RecentSearches) > 0 {
					m.cfg.RemoveRecentSearch(m.recentIdx)
					if m.recentIdx >= len(m.cfg.RecentSearches) && m.recentIdx > 0 {
						m.recentIdx = len(m.cfg.RecentSearches) - 1
					}
					_ = config.Save(m.cfg, m.configPath)
				}
			default:
				var cmd tea.Cmd
				m.searchInput, cmd = m.searchInput.Update(msg)
				cmds = append(cmds, cmd)
			}
		} else {
			switch msg.String() {
			case "ctrl+c", "esc":
				return m, tea.Quit
			case "up", "k":
				m.nav.PrevLink()
			case "down", "j":
				m.nav.NextLink()
			case "enter":
				cmds = append(cmds, m.followLink())
			case "tab":
				m.nav.ToggleMode()
			case "b", "backspace":
				// Leaving the screen orphans any in-flight fetch.
				m.lastSeq = 0
				m.nav.GoBack()
			case "h":
				m.lastSeq = 0
				m.nav.GoHome()
			case "c":
				cmds = append(cmds, m.copySelected())
			}
		}

	case uiTickMsg:
		cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }))

	case clearStatusMsg:
		m.statusMessage = ""

	default:
		// Cursor blink and friends still reach the focused input.
		if m.onHome() {
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.nav.Current().Kind() == nav.KindLoading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submitQuery classifies raw and starts a fetch. Invalid queries leave the
// screen alone and surface a status line.
func (m *model) submitQuery(raw string) tea.Cmd {
	seq, intent := m.fetcher.Submit(m.ctx, raw)
	if intent.Kind == query.KindInvalid {
		m.statusMessage = "Not an address, transaction hash, block number, or ENS name"
		return clearStatusLater()
	}

	m.lastSeq = seq
	m.nav.SetLoading(fmt.Sprintf("Looking up %s", format.TruncateHash(strings.TrimSpace(raw))))
	m.cfg.AddRecentSearch(raw)
	_ = config.Save(m.cfg, m.configPath)
	m.searchInput.SetValue("")
	m.recentIdx = 0
	return m.spinner.Tick
}

func (m *model) followLink() tea.Cmd {
	link, ok := m.nav.ResolveSelectedLink()
	if !ok {
		return nil
	}
	m.lastSeq = m.fetcher.SubmitLink(m.ctx, link)
	m.nav.SetLoading(fmt.Sprintf("Loading %s", linkLabel(link)))
	return m.spinner.Tick
}

func (m *model) copySelected() tea.Cmd {
	link, ok := m.nav.ResolveSelectedLink()
	if !ok {
		return nil
	}
	text := linkTarget(link)
	if err := clipboard.WriteAll(text); err != nil {
		m.statusMessage = "Failed to copy to clipboard"
	} else {
		m.statusMessage = fmt.Sprintf("Copied %s", format.TruncateHash(text))
	}
	return clearStatusLater()
}

func linkTarget(link nav.NavLink) string {
	switch link.Kind {
	case nav.LinkBlock:
		return strconv.FormatUint(link.BlockNumber, 10)
	case nav.LinkTransaction:
		return link.TxHash.Hex()
	default:
		return link.Address.Hex()
	}
}

func linkLabel(link nav.NavLink) string {
	if link.Kind == nav.LinkBlock {
		return "block " + format.AddCommas(strconv.FormatUint(link.BlockNumber, 10))
	}
	return format.TruncateHash(linkTarget(link))
}

func clearStatusLater() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg { return clearStatusMsg{} })
}
