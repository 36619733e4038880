package system

import (
	"fmt"
	"os"

	"github.com/iconix/fortudo/internal/cli"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iconix/fortudo/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Ops), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
