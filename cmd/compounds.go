package cmd

import (
	"errors"
	"fmt"

	"github.com/ccsbench/ccsbench/internal/benchmark"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	compoundsTools  []string
	compoundsOutput string
)

var compoundsCmd = &cobra.Command{
	Use:   "build-compounds-table <dataset>",
	Short: "Outer-join every tool's predictions for a dataset on (SMILES, Adduct, CCS)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ct, out, err := benchmark.BuildCompounds(benchConfig(), args[0], compoundsTools, compoundsOutput)
		if ct != nil {
			for _, m := range ct.Missing {
				warnf(cmd, "%v", m)
			}
		}
		if errors.Is(err, benchmark.ErrEmptyResult) {
			warnf(cmd, "%v, nothing written", err)
			return nil
		}
		if err != nil {
			return err
		}
		savedf(cmd, fmt.Sprintf("compounds table (%s rows, %d tools)", humanize.Comma(int64(len(ct.Rows))), len(ct.ToolRows)), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compoundsCmd)
	compoundsCmd.Flags().StringSliceVar(&compoundsTools, "tools", nil, "tools to include (default from config)")
	compoundsCmd.Flags().StringVarP(&compoundsOutput, "output", "o", "", "output path (default benchmark_dir/compounds_<dataset>.csv)")
}
