package benchmark

import (
	"context"
	"fmt"

	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/ccsbench/ccsbench/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Column names of a metrics summary file.
const (
	ColDataset  = "Dataset"
	ColTool     = "Tool"
	ColMeanAbs  = "Mean_abs"
	ColSDAbs    = "SD_abs"
	ColMeanPerc = "Mean_perc"
	ColSDPerc   = "SD_perc"
	ColOutliers = "Outliers"
)

// MetricsColumns is the nominal metrics summary header.
var MetricsColumns = []string{ColDataset, ColTool, ColMeanAbs, ColSDAbs, ColMeanPerc, ColSDPerc, ColOutliers}

// MetricsResult is the outcome of a metrics aggregation.
type MetricsResult struct {
	// Table holds the union of every present file, in (dataset, tool) order.
	Table *table.Table
	// Files is the number of files that contributed.
	Files int
	// Missing lists the pairs without a metrics file.
	Missing []*MissingFileError
	// Output is set once the table has been written.
	Output string
}

// AggregateMetrics reads the metrics file of every (dataset, tool) pair and
// unions them into one table. Missing files are skipped and listed in the
// result for the caller to report. Column sets may differ between files; cells
// a file lacks are null. Rows keep the caller's (dataset, tool) iteration order.
// When no rows are collected the result is returned together with ErrEmptyResult.
func AggregateMetrics(ctx context.Context, cfg Config, datasets, tools []string) (*MetricsResult, error) {
	log := cfg.logger()
	datasets, tools = cfg.datasets(datasets), cfg.tools(tools)

	type slot struct {
		dataset, tool, path string
		t                   *table.Table
	}
	slots := make([]slot, 0, len(datasets)*len(tools))
	for _, ds := range datasets {
		for _, tool := range tools {
			slots = append(slots, slot{dataset: ds, tool: tool, path: cfg.Layout.MetricsFile(ds, tool)})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i := range slots {
		s := &slots[i]
		if !utils.FileExists(s.path) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := table.ReadFile(s.path, table.ReadOptions{Delimiter: ';'})
			if err != nil {
				return fmt.Errorf("read metrics for %s/%s: %w", s.dataset, s.tool, err)
			}
			tagColumn(t, ColDataset, s.dataset)
			tagColumn(t, ColTool, s.tool)
			s.t = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &MetricsResult{Table: table.New()}
	for _, s := range slots {
		if s.t == nil {
			miss := &MissingFileError{Dataset: s.dataset, Tool: s.tool, Path: s.path}
			res.Missing = append(res.Missing, miss)
			log.Info("metrics file not found, skipping", "dataset", s.dataset, "tool", s.tool, "path", s.path)
			continue
		}
		res.Files++
		res.Table.Append(s.t)
	}
	if res.Table.Len() == 0 {
		return res, ErrEmptyResult
	}
	return res, nil
}

// JoinMetrics aggregates metrics and writes the joined table, comma-delimited,
// to output (the layout default when empty). Nothing is written on ErrEmptyResult.
func JoinMetrics(ctx context.Context, cfg Config, datasets, tools []string, output string) (*MetricsResult, error) {
	res, err := AggregateMetrics(ctx, cfg, datasets, tools)
	if err != nil {
		return res, err
	}
	if output == "" {
		output = cfg.Layout.JoinedMetricsFile()
	}
	if err := res.Table.WriteFile(output, table.WriteOptions{Delimiter: ','}); err != nil {
		return res, fmt.Errorf("write joined metrics: %w", err)
	}
	res.Output = output
	return res, nil
}

// tagColumn fills col with value where the file left it absent or empty.
func tagColumn(t *table.Table, col, value string) {
	t.AddColumn(col)
	for _, r := range t.Rows {
		if _, ok := r.Value(col); !ok {
			r[col] = value
		}
	}
}
