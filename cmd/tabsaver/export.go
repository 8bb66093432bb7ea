package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tabsaver/internal/app"
	"github.com/MrSnakeDoc/tabsaver/internal/utils"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write saved sessions as a Netscape bookmark file",
	Long: `Write every tabsaver folder and its entries as a Netscape bookmark
file that any browser can import. Without a path the file goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = log.Sync() }()

		if len(args) == 0 {
			return app.Export(cmd.Context(), cfg, log, os.Stdout)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer utils.CloseLogged(f, args[0], log)

		if err := app.Export(cmd.Context(), cfg, log, f); err != nil {
			return err
		}
		pterm.Success.Printfln("Exported bookmarks to %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
