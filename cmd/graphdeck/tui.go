package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rmax-ai/graphdeck/pkg/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse graphs and act on nodes interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		// the screen belongs to the TUI; logs go to a file
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logFile)
		if err != nil {
			return err
		}
		defer a.Close()

		m := tui.New(tui.Options{
			Session: a.sess,
			Toaster: a.toaster,
			BaseDir: cfg.BaseDir,
			Changes: a.subscribe(ctx),
		})
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}
