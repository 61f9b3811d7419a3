package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/habitkit/habitkit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(appCtx *Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appCtx.Bootstrap(ctx)
	go appCtx.Manager.Run(ctx)

	program := tea.NewProgram(tui.New(appCtx.Manager, appCtx.Oracle), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
