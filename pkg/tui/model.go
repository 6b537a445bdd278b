package tui

import (
	"context"
	"time"

	"evmex/pkg/config"
	"evmex/pkg/fetch"
	"evmex/pkg/models"
	"evmex/pkg/nav"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}
type uiTickMsg time.Time

// --- Model ---

type model struct {
	cfg        *config.Config
	configPath string

	nav     *nav.State
	fetcher *fetch.Fetcher
	sub     fetch.Subscriber
	ctx     context.Context

	searchInput textinput.Model
	spinner     spinner.Model

	network   *models.NetworkInfo
	recentIdx int

	width  int
	height int

	statusMessage string
	lastSeq       uint64
}

func initialModel(f *fetch.Fetcher, cfg *config.Config, configPath string) model {
	ti := textinput.New()
	ti.Placeholder = "address / tx hash / block number / ENS name"
	ti.Width = 66
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		cfg:         cfg,
		configPath:  configPath,
		nav:         nav.NewState(),
		fetcher:     f,
		sub:         f.Subscribe(),
		ctx:         context.Background(),
		searchInput: ti,
		spinner:     s,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listenForResults(m.sub),
		m.spinner.Tick,
		textinput.Blink,
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) }),
	)
}

// listenForResults re-arms after every received result, so the single
// subscription drains for the lifetime of the program.
func listenForResults(sub fetch.Subscriber) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func (m model) onHome() bool {
	return m.nav.Current().Kind() == nav.KindHome
}
