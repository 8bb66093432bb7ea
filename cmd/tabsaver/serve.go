package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tabsaver/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tabsaver daemon (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.ListenAddr = v
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(cmd.Context())
}
