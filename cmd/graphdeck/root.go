package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "graphdeck",
	Short:         "Terminal designer for app graphs",
	Version:       fmt.Sprintf("%s (%s, %s)", Version, Commit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to graphdeck.hcl (default ./graphdeck.hcl)")
	pf.String("endpoint", "", "Designer API endpoint")
	pf.String("base-dir", "", "App base directory (overrides the graph's)")
	pf.String("locale", "", "Display language, e.g. en or zh-CN")
	pf.String("journal", "", "Path to the SQLite session journal")
	pf.String("redis", "", "Redis address for sharing graph changes")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("log-file", "", "Log file used while the TUI owns the terminal")

	rootCmd.AddCommand(tuiCmd, menuCmd, mcpCmd)
}
