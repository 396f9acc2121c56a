package main

import (
	"os"

	"github.com/rmax-ai/graphdeck/pkg/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the node menu to agents over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		// stdout carries the protocol
		a, err := newApp(cmd.Context(), cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := mcp.Options{
			Session: a.sess,
			Toaster: a.toaster,
			BaseDir: cfg.BaseDir,
			Version: Version,
		}
		if a.journal != nil {
			opts.Journal = a.journal
		}
		return mcp.NewServer(opts).Serve()
	},
}
