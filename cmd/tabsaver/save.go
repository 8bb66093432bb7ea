package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tabsaver/internal/app"
	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the tabs of the focused window into a new folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOnce(cmd, func(ctx context.Context, a *app.App) (domain.SaveRecord, error) {
			return a.ForceSave(ctx)
		})
	},
}

var autosaveCmd = &cobra.Command{
	Use:   "autosave",
	Short: "Save every window into today's autosave folder, replacing its contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOnce(cmd, func(ctx context.Context, a *app.App) (domain.SaveRecord, error) {
			return a.Autosave(ctx)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{saveCmd, autosaveCmd} {
		c.Flags().StringP("output", "o", "", "Output format (json)")
		rootCmd.AddCommand(c)
	}
}

func runOnce(cmd *cobra.Command, pipeline func(context.Context, *app.App) (domain.SaveRecord, error)) error {
	output, _ := cmd.Flags().GetString("output")

	// quiet unless asked otherwise; the summary goes to stdout
	if !cmd.Flags().Changed("log-level") && os.Getenv("TABSAVER_LOG_LEVEL") == "" {
		log = logger.New("warn", cfg.PrettyLog)
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := pipeline(cmd.Context(), a)
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(rec); encErr != nil {
			return encErr
		}
		return err
	}
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Saved %d tabs into %q", rec.Tabs, rec.Title)
	return nil
}
