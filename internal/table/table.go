// Package table reads and writes delimited text tables whose cells may be null.
//
// A cell is null when it is absent from a row or empty after trimming. Tables keep
// their column order; appending a table with a different column set produces the
// union of both, in first-seen order.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ccsbench/ccsbench/internal/utils"
)

// Row maps column names to raw cell text.
type Row map[string]string

// Value returns the trimmed cell for col and whether it is non-null.
func (r Row) Value(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// Ptr returns the cell as a string pointer, nil when null.
func (r Row) Ptr(col string) *string {
	v, ok := r.Value(col)
	if !ok {
		return nil
	}
	return &v
}

// Float parses the cell as a float64. NaN and unparsable cells count as null.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r.Value(col)
	if !ok {
		return 0, false
	}
	return ParseFloat(v)
}

// Table is an in-memory delimited table.
type Table struct {
	// Source is the path the table was read from, if any.
	Source  string
	Columns []string
	Rows    []Row

	index map[string]int
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Has reports whether the table declares col.
func (t *Table) Has(col string) bool {
	if t.index == nil {
		t.reindex()
	}
	_, ok := t.index[col]
	return ok
}

// FirstMissing returns the first of cols that the table does not declare.
func (t *Table) FirstMissing(cols ...string) (string, bool) {
	for _, c := range cols {
		if !t.Has(c) {
			return c, true
		}
	}
	return "", false
}

// AddColumn appends col to the column list unless already present.
func (t *Table) AddColumn(col string) {
	if t.Has(col) {
		return
	}
	t.index[col] = len(t.Columns)
	t.Columns = append(t.Columns, col)
}

// AddRow appends a row. Keys not declared with AddColumn are not written.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Append adds all rows of other, extending the column set to the union of both.
// Columns other lacks are null in its rows; columns t lacks are added at the end.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	t.Rows = append(t.Rows, other.Rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

// ReadOptions controls how a delimited file is parsed.
type ReadOptions struct {
	// Delimiter for the file. If 0, it is sniffed from the file extension.
	Delimiter rune
	// NoHeader generates col_1..col_n column names instead of reading a header row.
	NoHeader bool
	// Sheet selects the worksheet of an .xlsx file; empty means the first one.
	Sheet string
}

// ReadFile parses a delimited file, or one worksheet of an .xlsx workbook.
func ReadFile(path string, opt ReadOptions) (*Table, error) {
	if IsXLSX(path) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open table: %w", err)
		}
		t, err := ReadXLSX(b, opt.Sheet)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		t.Source = path
		return t, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(path)
	}
	t, err := Read(f, delim, opt.NoHeader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	t.Source = path
	return t, nil
}

// Read parses delimited text from r.
func Read(r io.Reader, delim rune, noHeader bool) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	t := &Table{}
	first := true
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse delimited text: %w", err)
		}
		if first {
			first = false
			if noHeader {
				for i := range rec {
					t.AddColumn(fmt.Sprintf("col_%d", i+1))
				}
			} else {
				for _, h := range headerNames(rec) {
					t.AddColumn(h)
				}
				continue
			}
		}
		row := make(Row, len(t.Columns))
		for i, v := range rec {
			if i >= len(t.Columns) {
				break
			}
			row[t.Columns[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if t.index == nil {
		t.reindex()
	}
	return t, nil
}

// headerNames cleans a header row so every cell maps to its own column. Blank
// names become col_N and repeated names are numbered: the second "m/z" becomes
// "m/z.1", the third "m/z.2".
func headerNames(rec []string) []string {
	out := make([]string, len(rec))
	seen := make(map[string]bool, len(rec))
	next := make(map[string]int, len(rec))
	for i, h := range rec {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("col_%d", i+1)
		}
		if seen[h] {
			n := next[h]
			if n == 0 {
				n = 1
			}
			for seen[fmt.Sprintf("%s.%d", h, n)] {
				n++
			}
			next[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = true
		out[i] = h
	}
	return out
}

// WriteOptions controls delimited output.
type WriteOptions struct {
	Delimiter rune
	NoHeader  bool
}

// Encode renders the table as delimited text. Null cells are written empty.
func (t *Table) Encode(opt WriteOptions) ([]byte, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delim
	if !opt.NoHeader {
		if err := w.Write(t.Columns); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = r[c]
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the table atomically to path.
func (t *Table) WriteFile(path string, opt WriteOptions) error {
	b, err := t.Encode(opt)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// SniffDelimiter guesses a delimiter from the file name: tab for .tsv, comma otherwise.
func SniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a user-supplied delimiter name to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | 'tab')", s)
	}
}

// ParseFloat parses a numeric cell. NaN spellings count as null.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FormatFloat renders f with the shortest representation that round-trips.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
