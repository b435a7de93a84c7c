package benchmark

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/ccsbench/ccsbench/internal/utils"
)

// Identity and metric columns of a per-tool joined comparison file.
const (
	ColSMILES       = "SMILES"
	ColAdduct       = "Adduct"
	ColCCS          = "CCS"
	ColPredictedCCS = "Predicted CCS"
	ColPercDiff     = "percentage_difference"
	ColPredictedMZ  = "Predicted_mz"
)

// metricRenames maps optional joined-file metrics to their per-tool column prefix.
var metricRenames = []struct{ from, prefix string }{
	{ColPredictedCCS, "CCS_"},
	{ColPercDiff, "err_perc_"},
	{ColPredictedMZ, "mz_"},
}

// CompoundKey identifies one compound row. CCS holds the canonical text of the
// ground-truth value: cells that parse as numbers are compared by value, so
// "130.5" and "130.50" match while "130.5" and "130.51" never do. Cells that do
// not parse are compared as trimmed text.
type CompoundKey struct {
	SMILES string
	Adduct string
	CCS    string
}

// NewCompoundKey builds a key from raw cells.
func NewCompoundKey(smiles, adduct, ccs string) CompoundKey {
	ccs = strings.TrimSpace(ccs)
	if f, ok := table.ParseFloat(ccs); ok {
		ccs = table.FormatFloat(f)
	}
	return CompoundKey{SMILES: strings.TrimSpace(smiles), Adduct: strings.TrimSpace(adduct), CCS: ccs}
}

// CompoundRow is one (SMILES, Adduct, CCS) triple with the per-tool columns of
// every tool that reported it.
type CompoundRow struct {
	Key    CompoundKey
	Values map[string]string
}

// CompoundTable is the cross-tool comparison table of one dataset.
type CompoundTable struct {
	Dataset string
	// Columns is SMILES, Adduct, CCS followed by each contributing tool's columns.
	Columns []string
	Rows    []*CompoundRow
	// ToolRows counts distinct keys contributed per tool.
	ToolRows map[string]int
	Missing  []*MissingFileError
}

// contribution is one tool's sparse mapping from key to tool-named fields.
type contribution struct {
	tool    string
	columns []string
	keys    []CompoundKey
	fields  map[CompoundKey]map[string]string
	dupes   int
}

// BuildCompoundTable outer-joins the joined comparison files of tools for one
// dataset on (SMILES, Adduct, CCS). Each tool's rows are folded left to right
// into one mapping keyed by identity; keys unseen by a tool leave its columns
// null. Absent files are skipped; a file without a required
// identity column aborts the build with *MissingRequiredColumnError. When no
// file is found the partial result is returned with ErrEmptyResult.
func BuildCompoundTable(cfg Config, dataset string, tools []string) (*CompoundTable, error) {
	log := cfg.logger()
	tools = cfg.tools(tools)

	ct := &CompoundTable{
		Dataset:  dataset,
		Columns:  []string{ColSMILES, ColAdduct, ColCCS},
		ToolRows: map[string]int{},
	}
	index := map[CompoundKey]*CompoundRow{}
	found := 0
	for _, tool := range tools {
		path := cfg.Layout.JoinedFile(dataset, tool)
		if !utils.FileExists(path) {
			ct.Missing = append(ct.Missing, &MissingFileError{Dataset: dataset, Tool: tool, Path: path})
			log.Info("joined file not found, skipping tool", "dataset", dataset, "tool", tool, "path", path)
			continue
		}
		c, err := loadContribution(path, tool)
		if err != nil {
			return nil, err
		}
		if c.dupes > 0 {
			log.Warn("duplicate compound keys, keeping first", "dataset", dataset, "tool", tool, "duplicates", c.dupes)
		}
		found++
		ct.Columns = append(ct.Columns, c.columns...)
		ct.ToolRows[tool] = len(c.keys)
		for _, k := range c.keys {
			row, ok := index[k]
			if !ok {
				row = &CompoundRow{Key: k, Values: map[string]string{}}
				index[k] = row
				ct.Rows = append(ct.Rows, row)
			}
			for col, v := range c.fields[k] {
				row.Values[col] = v
			}
		}
	}
	if found == 0 {
		return ct, ErrEmptyResult
	}
	return ct, nil
}

func loadContribution(path, tool string) (*contribution, error) {
	t, err := table.ReadFile(path, table.ReadOptions{Delimiter: ';'})
	if err != nil {
		return nil, fmt.Errorf("read joined file for %s: %w", tool, err)
	}
	if col, missing := t.FirstMissing(ColCCS, ColSMILES, ColAdduct); missing {
		return nil, &MissingRequiredColumnError{Path: path, Column: col}
	}
	c := &contribution{tool: tool, fields: map[CompoundKey]map[string]string{}}
	rename := map[string]string{}
	for _, m := range metricRenames {
		if t.Has(m.from) {
			to := m.prefix + tool
			rename[m.from] = to
			c.columns = append(c.columns, to)
		}
	}
	for _, r := range t.Rows {
		k := NewCompoundKey(r[ColSMILES], r[ColAdduct], r[ColCCS])
		if _, seen := c.fields[k]; seen {
			c.dupes++
			continue
		}
		f := make(map[string]string, len(rename))
		for from, to := range rename {
			if v, ok := r.Value(from); ok {
				f[to] = v
			}
		}
		c.fields[k] = f
		c.keys = append(c.keys, k)
	}
	return c, nil
}

// Table renders the compound table; tool columns a row lacks are null.
func (ct *CompoundTable) Table() *table.Table {
	t := table.New(ct.Columns...)
	for _, r := range ct.Rows {
		row := make(table.Row, len(r.Values)+3)
		row[ColSMILES] = r.Key.SMILES
		row[ColAdduct] = r.Key.Adduct
		row[ColCCS] = r.Key.CCS
		for k, v := range r.Values {
			row[k] = v
		}
		t.AddRow(row)
	}
	return t
}

// WriteFile writes the table comma-delimited.
func (ct *CompoundTable) WriteFile(path string) error {
	if err := ct.Table().WriteFile(path, table.WriteOptions{Delimiter: ','}); err != nil {
		return fmt.Errorf("write compounds table: %w", err)
	}
	return nil
}

// BuildCompounds builds the compound table for dataset and writes it to output
// (the layout default when empty). It returns the written path.
func BuildCompounds(cfg Config, dataset string, tools []string, output string) (*CompoundTable, string, error) {
	ct, err := BuildCompoundTable(cfg, dataset, tools)
	if err != nil {
		if errors.Is(err, ErrEmptyResult) {
			return ct, "", fmt.Errorf("no joined files found for dataset %s: %w", dataset, err)
		}
		return nil, "", err
	}
	if output == "" {
		output = cfg.Layout.CompoundsFile(dataset)
	}
	if err := ct.WriteFile(output); err != nil {
		return ct, "", err
	}
	return ct, output, nil
}
