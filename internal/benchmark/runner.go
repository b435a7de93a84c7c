package benchmark

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ccsbench/ccsbench/internal/manifest"
	"github.com/ccsbench/ccsbench/internal/utils"
	"golang.org/x/sync/errgroup"
)

// ReportRequest is one invocation of the external report generator.
type ReportRequest struct {
	Dataset        string
	Tool           string
	DatasetFile    string
	PredictionFile string
	// OutDir is where the generator must leave joined<tool>.csv and metrics<tool>.csv.
	OutDir string
}

// ReportGenerator turns a canonical dataset plus one tool's predictions into a
// joined comparison file and a metrics summary file inside req.OutDir.
type ReportGenerator interface {
	Generate(ctx context.Context, req ReportRequest) error
	// Describe returns the command line used for req, for run manifests.
	Describe(req ReportRequest) []string
}

// ExecReportGenerator runs an external command as
// <Command...> <tool> <dataset> <dataset_file> <prediction_file> with OutDir as
// working directory.
type ExecReportGenerator struct {
	Command []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Describe implements ReportGenerator.
func (g *ExecReportGenerator) Describe(req ReportRequest) []string {
	args := make([]string, 0, len(g.Command)+4)
	for i, a := range g.Command {
		// the working directory changes, so script paths must be absolute
		if i > 0 && utils.FileExists(a) {
			if abs, err := filepath.Abs(a); err == nil {
				a = abs
			}
		}
		args = append(args, a)
	}
	return append(args, req.Tool, req.Dataset, absPath(req.DatasetFile), absPath(req.PredictionFile))
}

// Generate implements ReportGenerator.
func (g *ExecReportGenerator) Generate(ctx context.Context, req ReportRequest) error {
	if len(g.Command) == 0 {
		return fmt.Errorf("report command not configured")
	}
	argv := g.Describe(req)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = req.OutDir
	cmd.Stdout = g.Stdout
	cmd.Stderr = g.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("report command %q: %w", strings.Join(argv, " "), err)
	}
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// PairResult describes one generated report.
type PairResult struct {
	Dataset  string
	Tool     string
	OutDir   string
	Manifest *manifest.Manifest
}

// RunSummary is the outcome of RunBenchmark.
type RunSummary struct {
	Ran     []PairResult
	Skipped []*MissingFileError
}

// RunBenchmark invokes gen for every (dataset, tool) pair whose canonical
// dataset and prediction file exist. Missing inputs are skipped.
// Pairs run in parallel up to cfg.Workers; the first generator failure aborts
// the run. Each generated pair gets a run manifest in its output directory.
func RunBenchmark(ctx context.Context, cfg Config, gen ReportGenerator, datasets, tools []string) (*RunSummary, error) {
	log := cfg.logger()
	datasets, tools = cfg.datasets(datasets), cfg.tools(tools)

	sum := &RunSummary{}
	var reqs []ReportRequest
	for _, ds := range datasets {
		dsFile := cfg.Layout.DatasetFile(ds)
		if !utils.FileExists(dsFile) {
			sum.Skipped = append(sum.Skipped, &MissingFileError{Dataset: ds, Path: dsFile})
			log.Info("dataset file not found, skipping dataset", "dataset", ds, "path", dsFile)
			continue
		}
		for _, tool := range tools {
			pred := cfg.Layout.PredictionFile(ds, tool)
			if !utils.FileExists(pred) {
				sum.Skipped = append(sum.Skipped, &MissingFileError{Dataset: ds, Tool: tool, Path: pred})
				log.Info("predictions file not found, skipping tool", "dataset", ds, "tool", tool, "path", pred)
				continue
			}
			reqs = append(reqs, ReportRequest{
				Dataset:        ds,
				Tool:           tool,
				DatasetFile:    dsFile,
				PredictionFile: pred,
				OutDir:         cfg.Layout.ResultDir(ds, tool),
			})
		}
	}

	sum.Ran = make([]PairResult, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i, req := range reqs {
		g.Go(func() error {
			if err := utils.EnsureDir(req.OutDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			m := manifest.New(req.OutDir, req.Dataset, req.Tool)
			m.DatasetFile = req.DatasetFile
			m.PredictionFile = req.PredictionFile
			m.Command = gen.Describe(req)

			log.Info("running report", "dataset", req.Dataset, "tool", req.Tool)
			runErr := gen.Generate(ctx, req)
			m.Finish(runErr)
			if err := m.Save(); err != nil && runErr == nil {
				runErr = fmt.Errorf("save manifest: %w", err)
			}
			if runErr != nil {
				return fmt.Errorf("report %s/%s: %w", req.Dataset, req.Tool, runErr)
			}
			sum.Ran[i] = PairResult{Dataset: req.Dataset, Tool: req.Tool, OutDir: req.OutDir, Manifest: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, nil
}
