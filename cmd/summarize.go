package cmd

import (
	"github.com/ccsbench/ccsbench/internal/benchmark"
	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/spf13/cobra"
)

var (
	summarizeOutput    string
	summarizeThreshold float64
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <dataset> <tool>",
	Short: "Recompute the metrics summary of one (dataset, tool) joined file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold := cfg.OutlierThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = summarizeThreshold
		}
		s, err := benchmark.Summarize(benchConfig(), args[0], args[1], threshold)
		if err != nil {
			return err
		}
		t := benchmark.SummaryTable(*s)
		opt := table.WriteOptions{Delimiter: ';'}
		if summarizeOutput != "" {
			if err := t.WriteFile(summarizeOutput, opt); err != nil {
				return err
			}
			savedf(cmd, "metrics summary", summarizeOutput)
			return nil
		}
		b, err := t.Encode(opt)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&summarizeOutput, "output", "o", "", "write the summary to this file instead of stdout")
	summarizeCmd.Flags().Float64Var(&summarizeThreshold, "threshold", benchmark.DefaultOutlierThreshold, "robust |z| outlier threshold (overrides config)")
}
