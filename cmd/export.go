package cmd

import (
	"fmt"

	"github.com/ccsbench/ccsbench/internal/store"
	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	exportDB        string
	exportDelimiter string
)

var exportCmd = &cobra.Command{
	Use:   "export <csv...>",
	Short: "Load benchmark tables into a SQLite database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDB == "" {
			return fmt.Errorf("--db is required")
		}
		delim, err := table.ParseDelimiter(exportDelimiter)
		if err != nil {
			return err
		}
		res, err := store.ExportFiles(cmd.Context(), exportDB, args, delim)
		for _, e := range res {
			savedf(cmd, fmt.Sprintf("table %s (%s rows) from %s", e.Table, humanize.Comma(int64(e.Rows)), e.Path), exportDB)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportDB, "db", "", "SQLite database path (required)")
	exportCmd.Flags().StringVar(&exportDelimiter, "delimiter", "", "input delimiter: ',' | ';' | 'tab' (default: sniff from extension)")
}
