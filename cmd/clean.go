package cmd

import (
	"fmt"

	"github.com/ccsbench/ccsbench/internal/sources"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [source...]",
	Short: "Normalize raw source tables into canonical datasets",
	Long: `Converts each raw source table (default: every registered source) into the
canonical schema and writes data_dir/dataset_<tag>.csv. A source that cannot be
read or lacks a required column is reported and skipped; the command fails once
all sources were tried.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = sources.Names()
		}
		layout := cfg.Layout()
		var failed []string
		for _, name := range names {
			a, ok := sources.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown source: %s (known: %v)", name, sources.Names())
			}
			res, err := cleanSource(a, layout.DatasetFile(a.Dataset))
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", name, err)
				failed = append(failed, name)
				continue
			}
			savedf(cmd, fmt.Sprintf("%s cleaned dataset (%s records)", name, humanize.Comma(int64(res.Records))), res.Output)
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d sources failed: %v", len(failed), len(names), failed)
		}
		return nil
	},
}

// cleanSource normalizes one source with its configured file, delimiter and sheet.
func cleanSource(a sources.Adapter, out string) (*sources.Result, error) {
	delim, err := cfg.SourceDelimiter(a.Source, a.Delimiter)
	if err != nil {
		return nil, err
	}
	opt := sources.Options{Delimiter: delim, Sheet: cfg.Sources[a.Source].Sheet, Logger: logger}
	return sources.Normalize(a, cfg.SourceFile(a.Source, a.DefaultFile), out, opt)
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
