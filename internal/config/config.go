// Package config loads the benchmark workspace configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ccsbench/ccsbench/internal/benchmark"
	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LocalFile is the config file picked up from the working directory.
const LocalFile = "ccsbench.yaml"

// SourceConfig overrides the raw file and delimiter of one source.
type SourceConfig struct {
	File      string `mapstructure:"file" yaml:"file,omitempty"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
	// Sheet picks the worksheet of an .xlsx raw file.
	Sheet string `mapstructure:"sheet" yaml:"sheet,omitempty"`
}

// Global configuration structure.
type Global struct {
	RawDir         string `mapstructure:"raw_dir" yaml:"raw_dir"`
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	PredictionsDir string `mapstructure:"predictions_dir" yaml:"predictions_dir"`
	ResultsDir     string `mapstructure:"results_dir" yaml:"results_dir"`
	BenchmarkDir   string `mapstructure:"benchmark_dir" yaml:"benchmark_dir"`
	InputsDir      string `mapstructure:"inputs_dir" yaml:"inputs_dir"`

	Datasets []string `mapstructure:"datasets" yaml:"datasets"`
	Tools    []string `mapstructure:"tools" yaml:"tools"`

	// ReportCommand is invoked per (dataset, tool) by run-benchmark.
	ReportCommand    []string `mapstructure:"report_command" yaml:"report_command"`
	Workers          int      `mapstructure:"workers" yaml:"workers"`
	OutlierThreshold float64  `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`

	Sources map[string]SourceConfig `mapstructure:"sources" yaml:"sources,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		RawDir:           "datasets",
		DataDir:          "data",
		PredictionsDir:   "predictions",
		ResultsDir:       "results",
		BenchmarkDir:     "benchmark",
		InputsDir:        "tmp",
		Datasets:         []string{"allccs", "metlinims", "metlinlipidims", "ccsbase"},
		Tools:            []string{"darkchem", "allccs", "ccsbase", "deepccs", "ccsp2", "hyperccs"},
		ReportCommand:    []string{"python", "create_report.py"},
		Workers:          1,
		OutlierThreshold: benchmark.DefaultOutlierThreshold,
	}
}

// DefaultPath is ~/.ccsbench/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ccsbench", "config.yaml"), nil
}

// Resolve picks the config file to use: cfgFile when set, else ./ccsbench.yaml
// when it exists, else the per-user default.
func Resolve(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if _, err := os.Stat(LocalFile); err == nil {
		return LocalFile, nil
	}
	return DefaultPath()
}

// Save writes the given configuration as YAML to the resolved config path,
// creating its directory if necessary. It returns the path written.
func Save(c *Global, cfgFile string) (string, error) {
	path, err := Resolve(cfgFile)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Load loads configuration from .env, env, config file, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CCSBENCH")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("raw_dir", d.RawDir)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("predictions_dir", d.PredictionsDir)
	v.SetDefault("results_dir", d.ResultsDir)
	v.SetDefault("benchmark_dir", d.BenchmarkDir)
	v.SetDefault("inputs_dir", d.InputsDir)
	v.SetDefault("datasets", d.Datasets)
	v.SetDefault("tools", d.Tools)
	v.SetDefault("report_command", d.ReportCommand)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("outlier_threshold", d.OutlierThreshold)

	path, err := Resolve(cfgFile)
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	// optional read; a missing file leaves the defaults
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return &c, nil
}

// Layout returns the directory layout of the benchmark workspace.
func (c *Global) Layout() benchmark.Layout {
	return benchmark.Layout{
		DataDir:        c.DataDir,
		PredictionsDir: c.PredictionsDir,
		ResultsDir:     c.ResultsDir,
		BenchmarkDir:   c.BenchmarkDir,
	}
}

// Benchmark builds the configuration value passed to benchmark operations.
func (c *Global) Benchmark(log *slog.Logger) benchmark.Config {
	return benchmark.Config{
		Layout:   c.Layout(),
		Datasets: c.Datasets,
		Tools:    c.Tools,
		Workers:  c.Workers,
		Logger:   log,
	}
}

// SourceFile returns the raw file of source, falling back to def.
func (c *Global) SourceFile(source, def string) string {
	name := def
	if sc, ok := c.Sources[source]; ok && sc.File != "" {
		name = sc.File
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.RawDir, name)
}

// SourceDelimiter returns the configured delimiter of source, or def.
func (c *Global) SourceDelimiter(source string, def rune) (rune, error) {
	sc, ok := c.Sources[source]
	if !ok || sc.Delimiter == "" {
		return def, nil
	}
	d, err := table.ParseDelimiter(sc.Delimiter)
	if err != nil {
		return 0, fmt.Errorf("source %s: %w", source, err)
	}
	return d, nil
}
