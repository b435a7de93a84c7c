// Package benchmark aggregates per-(dataset, tool) report outputs into
// benchmark-wide tables and drives the external report generator.
package benchmark

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Layout holds the directory conventions of a benchmark workspace. It is built
// once from configuration and passed to every operation.
type Layout struct {
	// DataDir holds canonical datasets: dataset_<name>.csv.
	DataDir string
	// PredictionsDir holds raw tool predictions: <dataset>/<tool>.csv.
	PredictionsDir string
	// ResultsDir holds report outputs: <dataset>/<tool>/{joined,metrics}<tool>.csv.
	ResultsDir string
	// BenchmarkDir holds cross-dataset and cross-tool tables.
	BenchmarkDir string
}

// Config is the explicit configuration value threaded into every operation.
type Config struct {
	Layout Layout
	// Datasets and Tools are the defaults used when a caller passes none.
	Datasets []string
	Tools    []string
	// Workers bounds parallel work over the dataset × tool product; <= 0 means 1.
	Workers int
	Logger  *slog.Logger
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c Config) datasets(requested []string) []string {
	if len(requested) == 0 {
		return c.Datasets
	}
	return requested
}

func (c Config) tools(requested []string) []string {
	if len(requested) == 0 {
		return c.Tools
	}
	return requested
}

// DatasetFile is the canonical dataset path for name.
func (l Layout) DatasetFile(name string) string {
	return filepath.Join(l.DataDir, fmt.Sprintf("dataset_%s.csv", name))
}

// PredictionFile is the raw prediction file of tool for dataset.
func (l Layout) PredictionFile(dataset, tool string) string {
	return filepath.Join(l.PredictionsDir, dataset, tool+".csv")
}

// ResultDir is where the report generator writes for (dataset, tool).
func (l Layout) ResultDir(dataset, tool string) string {
	return filepath.Join(l.ResultsDir, dataset, tool)
}

// JoinedFile is the per-row comparison file of (dataset, tool).
func (l Layout) JoinedFile(dataset, tool string) string {
	return filepath.Join(l.ResultDir(dataset, tool), fmt.Sprintf("joined%s.csv", tool))
}

// MetricsFile is the summary-metrics file of (dataset, tool).
func (l Layout) MetricsFile(dataset, tool string) string {
	return filepath.Join(l.ResultDir(dataset, tool), fmt.Sprintf("metrics%s.csv", tool))
}

// JoinedMetricsFile is the default benchmark-wide metrics table.
func (l Layout) JoinedMetricsFile() string {
	return filepath.Join(l.BenchmarkDir, "joined_metrics.csv")
}

// CompoundsFile is the default cross-tool compound table for dataset.
func (l Layout) CompoundsFile(dataset string) string {
	return filepath.Join(l.BenchmarkDir, fmt.Sprintf("compounds_%s.csv", dataset))
}
