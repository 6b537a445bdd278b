package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"evmex/pkg/config"
	"evmex/pkg/fetch"
)

func Start(f *fetch.Fetcher, cfg *config.Config, configPath, version string) {
	Version = version
	p := tea.NewProgram(
		initialModel(f, cfg, configPath),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
