package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tabsaver/internal/config"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tabsaver",
	Short: "Save open browser tabs as bookmark folders",
	Long: `tabsaver keeps your open tabs as bookmarks.

Run without a subcommand to start the daemon: it watches the browser over
the DevTools protocol, autosaves every window into a per-day folder when
you go idle, and listens for force saves on a local HTTP endpoint.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "YAML config file (overrides TABSAVER_CONFIG_FILE)")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("cdp-url", "", "DevTools endpoint of the browser")
	f.String("db", "", "bookmark store path")
}

// loadConfig builds the configuration; explicit flags win over env and file.
func loadConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		if err := os.Setenv("TABSAVER_CONFIG_FILE", path); err != nil {
			return err
		}
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if v, _ := flags.GetString("log-level"); v != "" {
		c.LogLevel = v
	}
	if v, _ := flags.GetString("cdp-url"); v != "" {
		c.CDPURL = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		c.DBPath = v
	}

	cfg = c
	log = logger.New(cfg.LogLevel, cfg.PrettyLog)
	return nil
}
