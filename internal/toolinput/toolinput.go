// Package toolinput prepares the per-tool prediction inputs of a canonical dataset.
package toolinput

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ccsbench/ccsbench/internal/canonical"
	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/samber/lo"
)

// Format describes the input file one prediction tool expects.
type Format struct {
	Tool string
	File string
	// Build renders the input table from unique-SMILES records (first occurrence
	// kept) and from every record with a SMILES.
	Build func(unique, all []canonical.Record) *table.Table
	Write table.WriteOptions
}

var formats = map[string]*Format{}

// Register adds f to the registry, replacing any format for the same tool.
func Register(f *Format) { formats[f.Tool] = f }

// Lookup returns the format registered for tool.
func Lookup(tool string) (*Format, bool) {
	f, ok := formats[tool]
	return f, ok
}

// Tools lists registered tools in sorted order.
func Tools() []string {
	out := make([]string, 0, len(formats))
	for k := range formats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ccsp2Adducts are the adducts every compound is queried with.
var ccsp2Adducts = []string{"M+H", "M+Na", "M-H", "M-2H"}

func init() {
	Register(&Format{
		Tool: "ccsbase",
		File: "dataccsbase.csv",
		Build: func(unique, _ []canonical.Record) *table.Table {
			t := table.New("Adduct", "Smiles", "Name")
			for _, r := range unique {
				t.AddRow(table.Row{"Adduct": "All", "Smiles": *r.SMILES, "Name": *r.SMILES})
			}
			return t
		},
		Write: table.WriteOptions{Delimiter: ','},
	})
	Register(&Format{
		Tool: "allccs",
		File: "dataallccs.csv",
		Build: func(unique, _ []canonical.Record) *table.Table {
			t := table.New("index", "SMILES")
			for i, r := range unique {
				t.AddRow(table.Row{"index": strconv.Itoa(i), "SMILES": *r.SMILES})
			}
			return t
		},
		Write: table.WriteOptions{Delimiter: ',', NoHeader: true},
	})
	Register(&Format{
		Tool:  "darkchem",
		File:  "datadarkchem.tsv",
		Build: smilesOnly,
		Write: table.WriteOptions{Delimiter: '\t'},
	})
	Register(&Format{
		Tool: "deepccs",
		File: "datadeepccs.csv",
		Build: func(_, all []canonical.Record) *table.Table {
			t := table.New("SMILES", "Adducts")
			seen := map[[2]string]bool{}
			for _, r := range all {
				k := [2]string{*r.SMILES, NormalizeAdduct(r.Adduct)}
				if seen[k] {
					continue
				}
				seen[k] = true
				t.AddRow(table.Row{"SMILES": k[0], "Adducts": k[1]})
			}
			return t
		},
		Write: table.WriteOptions{Delimiter: ','},
	})
	Register(&Format{
		Tool: "ccsp2",
		File: "dataccsp2.csv",
		Build: func(unique, _ []canonical.Record) *table.Table {
			t := table.New("SMILES", "Adduct")
			for _, r := range unique {
				for _, a := range ccsp2Adducts {
					t.AddRow(table.Row{"SMILES": *r.SMILES, "Adduct": a})
				}
			}
			return t
		},
		Write: table.WriteOptions{Delimiter: ','},
	})
	Register(&Format{
		Tool:  "hyperccs",
		File:  "datahyperccs.csv",
		Build: smilesOnly,
		Write: table.WriteOptions{Delimiter: ','},
	})
}

func smilesOnly(unique, _ []canonical.Record) *table.Table {
	t := table.New("SMILES")
	for _, r := range unique {
		t.AddRow(table.Row{"SMILES": *r.SMILES})
	}
	return t
}

// NormalizeAdduct strips the bracket and charge notation: "[M+H]+" becomes "M+H".
func NormalizeAdduct(a string) string {
	a = strings.TrimSpace(a)
	if strings.HasPrefix(a, "[") {
		if i := strings.Index(a, "]"); i > 0 {
			return a[1:i]
		}
	}
	return a
}

// Output is one written tool input file.
type Output struct {
	Tool string
	Path string
	Rows int
}

// Prepare writes the input file of every requested tool for the canonical
// records of dataset under dir/<dataset>/<tool>/. Records without SMILES are
// skipped. Tools with no registered format are logged and skipped.
func Prepare(records []canonical.Record, dir, dataset string, tools []string, log *slog.Logger) ([]Output, error) {
	if log == nil {
		log = slog.Default()
	}
	all := lo.Filter(records, func(r canonical.Record, _ int) bool {
		return r.SMILES != nil && strings.TrimSpace(*r.SMILES) != ""
	})
	unique := lo.UniqBy(all, func(r canonical.Record) string { return *r.SMILES })
	if skipped := len(records) - len(all); skipped > 0 {
		log.Info("records without SMILES skipped", "dataset", dataset, "rows", skipped)
	}

	var out []Output
	for _, tool := range tools {
		f, ok := Lookup(tool)
		if !ok {
			log.Warn("no input format for tool, skipping", "dataset", dataset, "tool", tool)
			continue
		}
		t := f.Build(unique, all)
		path := filepath.Join(dir, dataset, tool, f.File)
		if err := t.WriteFile(path, f.Write); err != nil {
			return out, fmt.Errorf("write %s input: %w", tool, err)
		}
		out = append(out, Output{Tool: tool, Path: path, Rows: t.Len()})
	}
	return out, nil
}

// PrepareFile reads the canonical dataset at path and prepares tool inputs from it.
func PrepareFile(path, dir, dataset string, tools []string, log *slog.Logger) ([]Output, error) {
	recs, err := canonical.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Prepare(recs, dir, dataset, tools, log)
}
