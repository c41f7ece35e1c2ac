package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/curator/internal/tui"
)

func newDashboardCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive review dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}
}

func runDashboard(cmd *cobra.Command, opts *rootOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the dashboard needs a terminal; use 'curator list' for scripted output")
	}

	a, err := loadApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := a.newController(true)
	defer ctrl.Close()

	model := tui.NewModel(cmd.Context(), ctrl, tui.Options{
		ConfirmActions: a.cfg.Dashboard.ConfirmActions,
		ServerURL:      a.cfg.API.URL,
		Opener:         a.launcher(),
		Logger:         a.logger,
	})

	if a.autoRefresh() {
		ctrl.SetAutoRefresh(true)
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	a.logger.Info("starting TUI", "filter", ctrl.Filter(), "autoRefresh", ctrl.AutoRefresh())

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
