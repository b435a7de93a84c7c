package sources

import (
	"fmt"
	"log/slog"

	"github.com/ccsbench/ccsbench/internal/canonical"
	"github.com/ccsbench/ccsbench/internal/table"
)

// Options tunes one normalization run.
type Options struct {
	// Delimiter overrides the adapter's raw file delimiter when non-zero.
	Delimiter rune
	// Sheet selects the worksheet when the raw file is an .xlsx workbook.
	Sheet  string
	Logger *slog.Logger
}

// Result describes a written canonical dataset.
type Result struct {
	Source  string
	Dataset string
	Output  string
	RawRows int
	Records int
}

// Convert reads the raw file at in and returns its canonical records. Records
// with a null CCS never appear in the output.
func Convert(a Adapter, in string, opt Options) ([]canonical.Record, int, error) {
	delim := a.Delimiter
	if opt.Delimiter != 0 {
		delim = opt.Delimiter
	}
	raw, err := table.ReadFile(in, table.ReadOptions{Delimiter: delim, Sheet: opt.Sheet})
	if err != nil {
		return nil, 0, fmt.Errorf("read %s source: %w", a.Source, err)
	}
	recs, err := a.Convert(raw)
	if err != nil {
		return nil, raw.Len(), err
	}
	return recs, raw.Len(), nil
}

// Normalize converts the raw file at in and writes the canonical dataset to out.
// The write is the only side effect; a *SchemaError leaves out untouched.
func Normalize(a Adapter, in, out string, opt Options) (*Result, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	recs, rawRows, err := Convert(a, in, opt)
	if err != nil {
		return nil, err
	}
	if dropped := rawRows - len(recs); dropped > 0 && !a.Wide {
		log.Warn("dropped rows without ccs", "source", a.Source, "rows", dropped)
	}
	if err := canonical.WriteFile(out, recs, a.Extras); err != nil {
		return nil, fmt.Errorf("write %s dataset: %w", a.Dataset, err)
	}
	log.Debug("normalized source", "source", a.Source, "raw_rows", rawRows, "records", len(recs), "output", out)
	return &Result{Source: a.Source, Dataset: a.Dataset, Output: out, RawRows: rawRows, Records: len(recs)}, nil
}
