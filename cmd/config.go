package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cfgpkg "github.com/ccsbench/ccsbench/internal/config"
	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ccsbench configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "raw_dir: %s\n", cfg.RawDir)
		fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
		fmt.Fprintf(out, "predictions_dir: %s\n", cfg.PredictionsDir)
		fmt.Fprintf(out, "results_dir: %s\n", cfg.ResultsDir)
		fmt.Fprintf(out, "benchmark_dir: %s\n", cfg.BenchmarkDir)
		fmt.Fprintf(out, "inputs_dir: %s\n", cfg.InputsDir)
		fmt.Fprintf(out, "datasets: %s\n", strings.Join(cfg.Datasets, ","))
		fmt.Fprintf(out, "tools: %s\n", strings.Join(cfg.Tools, ","))
		fmt.Fprintf(out, "report_command: %s\n", strings.Join(cfg.ReportCommand, " "))
		fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
		fmt.Fprintf(out, "outlier_threshold: %.3f\n", cfg.OutlierThreshold)
		names := lo.Keys(cfg.Sources)
		sort.Strings(names)
		for _, name := range names {
			sc := cfg.Sources[name]
			fmt.Fprintf(out, "sources.%s: file=%s delimiter=%s sheet=%s\n", name, sc.File, sc.Delimiter, sc.Sheet)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		path, err := cfgpkg.Save(cfg, cfgFile)
		if err != nil {
			return err
		}
		savedf(cmd, "config", path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cfgpkg.Save(cfgpkg.Defaults(), cfgFile)
		if err != nil {
			return err
		}
		savedf(cmd, "default config", path)
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "raw_dir":
		c.RawDir = val
	case "data_dir":
		c.DataDir = val
	case "predictions_dir":
		c.PredictionsDir = val
	case "results_dir":
		c.ResultsDir = val
	case "benchmark_dir":
		c.BenchmarkDir = val
	case "inputs_dir":
		c.InputsDir = val
	case "datasets":
		c.Datasets = splitList(val)
	case "tools":
		c.Tools = splitList(val)
	case "report_command":
		c.ReportCommand = strings.Fields(val)
	case "workers":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for workers: %v", val)
		}
		c.Workers = i
	case "outlier_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for outlier_threshold: %v", val)
		}
		c.OutlierThreshold = f
	default:
		// sources.<name>.{file,delimiter,sheet}
		parts := strings.Split(key, ".")
		if len(parts) != 3 || parts[0] != "sources" {
			return fmt.Errorf("unknown key: %s", key)
		}
		if c.Sources == nil {
			c.Sources = map[string]cfgpkg.SourceConfig{}
		}
		sc := c.Sources[parts[1]]
		switch parts[2] {
		case "file":
			sc.File = val
		case "delimiter":
			if _, err := table.ParseDelimiter(val); err != nil {
				return err
			}
			sc.Delimiter = val
		case "sheet":
			sc.Sheet = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		c.Sources[parts[1]] = sc
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}
