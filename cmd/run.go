package cmd

import (
	"fmt"

	"github.com/ccsbench/ccsbench/internal/benchmark"
	"github.com/ccsbench/ccsbench/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	runDatasets []string
	runTools    []string
)

var runCmd = &cobra.Command{
	Use:   "run-benchmark",
	Short: "Run the report generator for every (dataset, tool) pair",
	Long: `For each dataset with a canonical file and each tool with a prediction file,
invokes report_command <tool> <dataset> <dataset_file> <prediction_file> inside
results_dir/<dataset>/<tool>/ and records run.json there. Missing inputs are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := &benchmark.ExecReportGenerator{
			Command: cfg.ReportCommand,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
		}
		sum, err := benchmark.RunBenchmark(cmd.Context(), benchConfig(), gen, runDatasets, runTools)
		if sum != nil {
			for _, s := range sum.Skipped {
				warnf(cmd, "%v", s)
			}
			for _, r := range sum.Ran {
				if r.Manifest != nil {
					savedf(cmd, fmt.Sprintf("report %s/%s", r.Dataset, r.Tool), manifest.Path(r.Manifest.Dir()))
				}
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVar(&runDatasets, "datasets", nil, "datasets to benchmark (default from config)")
	runCmd.Flags().StringSliceVar(&runTools, "tools", nil, "tools to benchmark (default from config)")
}
