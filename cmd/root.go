package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ccsbench/ccsbench/internal/benchmark"
	cfgpkg "github.com/ccsbench/ccsbench/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	workers int

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ccsbench",
	Short: "ccsbench: benchmark CCS prediction tools against reference datasets",
	Long: `ccsbench normalizes collision cross section (CCS) reference datasets into one
canonical schema, prepares per-tool prediction inputs, runs the report generator
for every (dataset, tool) pair, and aggregates the results into benchmark tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr(), debug)
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") && workers > 0 {
			c.Workers = workers
		}
		cfg = c
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ccsbench.yaml, then ~/.ccsbench/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "parallel (dataset, tool) pairs (overrides config)")
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func benchConfig() benchmark.Config {
	return cfg.Benchmark(logger)
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: "+format+"\n", args...)
}

func savedf(cmd *cobra.Command, what, path string) {
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s -> %s\n", what, path)
}
