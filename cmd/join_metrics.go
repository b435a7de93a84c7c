package cmd

import (
	"errors"
	"fmt"

	"github.com/ccsbench/ccsbench/internal/benchmark"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	joinDatasets []string
	joinTools    []string
	joinOutput   string
)

var joinMetricsCmd = &cobra.Command{
	Use:   "join-metrics",
	Short: "Union every per-(dataset, tool) metrics file into one table",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := benchmark.JoinMetrics(cmd.Context(), benchConfig(), joinDatasets, joinTools, joinOutput)
		if res != nil {
			for _, m := range res.Missing {
				warnf(cmd, "%v", m)
			}
		}
		if errors.Is(err, benchmark.ErrEmptyResult) {
			warnf(cmd, "no metrics files found, nothing written")
			return nil
		}
		if err != nil {
			return err
		}
		savedf(cmd, fmt.Sprintf("joined metrics (%s rows from %d files)", humanize.Comma(int64(res.Table.Len())), res.Files), res.Output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(joinMetricsCmd)
	joinMetricsCmd.Flags().StringSliceVar(&joinDatasets, "datasets", nil, "datasets to include (default from config)")
	joinMetricsCmd.Flags().StringSliceVar(&joinTools, "tools", nil, "tools to include (default from config)")
	joinMetricsCmd.Flags().StringVarP(&joinOutput, "output", "o", "", "output path (default benchmark_dir/joined_metrics.csv)")
}
