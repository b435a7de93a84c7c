package sources

import (
	"strings"

	"github.com/ccsbench/ccsbench/internal/table"
)

// CCSColumnPrefix tags wide CCS value columns, e.g. "CCS [M+Na]+".
const CCSColumnPrefix = "CCS "

// Melter expands wide rows holding several adduct-tagged CCS columns into one
// row per (molecule, adduct).
type Melter struct {
	// Prefix is stripped, trailing separator included, to obtain the adduct.
	// Defaults to CCSColumnPrefix.
	Prefix string
	// Marker selects value columns. Defaults to Prefix followed by "[", so
	// "CCS [M+H]+" melts while a plain "CCS method" column stays identity.
	Marker string
}

// MeltedRow is one (original row, value column) pair with a non-null CCS.
type MeltedRow struct {
	// Identity holds the original row's non-value columns.
	Identity table.Row
	CCS      float64
	// AdductColumn is the value column the CCS came from.
	AdductColumn string
	// Adduct is nil when AdductColumn does not carry the prefix.
	Adduct *string
}

func (m Melter) prefix() string {
	if m.Prefix == "" {
		return CCSColumnPrefix
	}
	return m.Prefix
}

func (m Melter) marker() string {
	if m.Marker == "" {
		return m.prefix() + "["
	}
	return m.Marker
}

// ValueColumns returns the columns whose name begins with the marker, in table order.
func (m Melter) ValueColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		if strings.HasPrefix(c, m.marker()) {
			out = append(out, c)
		}
	}
	return out
}

// Melt reshapes t. The first pass collects value columns; the second emits one
// row per non-null value cell, column by column. The number of rows returned is
// the number of non-null cells across all value columns.
func (m Melter) Melt(t *table.Table) []MeltedRow {
	valueCols := m.ValueColumns(t.Columns)
	isValue := make(map[string]bool, len(valueCols))
	for _, c := range valueCols {
		isValue[c] = true
	}
	identity := make([]table.Row, len(t.Rows))
	for i, row := range t.Rows {
		id := make(table.Row, len(row))
		for k, v := range row {
			if !isValue[k] {
				id[k] = v
			}
		}
		identity[i] = id
	}

	var out []MeltedRow
	for _, col := range valueCols {
		adduct := ExtractAdduct(col, m.prefix())
		for i, row := range t.Rows {
			ccs, ok := row.Float(col)
			if !ok {
				continue
			}
			out = append(out, MeltedRow{
				Identity:     identity[i],
				CCS:          ccs,
				AdductColumn: col,
				Adduct:       adduct,
			})
		}
	}
	return out
}

// ExtractAdduct strips prefix from a value column name: "CCS [M+Na]+" yields
// "[M+Na]+". It returns nil when the prefix is absent or nothing follows it.
func ExtractAdduct(col, prefix string) *string {
	rest, ok := strings.CutPrefix(col, prefix)
	if !ok {
		return nil
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	return &rest
}
