// Package canonical defines the unified per-measurement record every raw CCS
// source is normalized into, and its on-disk CSV form.
package canonical

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ccsbench/ccsbench/internal/table"
)

// DefaultGas is the drift gas of every currently supported source.
const DefaultGas = "N2"

// Base columns, always written in this order.
var BaseColumns = []string{"dataset", "id", "name", "smiles", "inchi", "adduct", "ccs", "is_3D", "gas"}

// Extra columns, written after the base columns when an adapter supplies them.
const (
	ExtraMZ      = "mz"
	ExtraType    = "type"
	ExtraCharge  = "charge"
	ExtraFormula = "formula"
)

// ExtraOrder is the fixed order of optional extra columns.
var ExtraOrder = []string{ExtraMZ, ExtraType, ExtraCharge, ExtraFormula}

// Record is one experimental CCS measurement. Nil pointers are nulls.
type Record struct {
	Dataset string
	ID      *string
	Name    *string
	SMILES  *string
	InChI   *string
	// Adduct is empty when it could not be derived.
	Adduct string
	CCS    float64
	Is3D   *bool
	Gas    string

	MZ      *float64
	Type    *string
	Charge  *int
	Formula *string
}

// Columns returns the header for a canonical file carrying the given extras.
// Unknown extras are ignored; known ones are emitted in ExtraOrder.
func Columns(extras []string) []string {
	cols := append([]string(nil), BaseColumns...)
	for _, e := range ExtraOrder {
		for _, want := range extras {
			if want == e {
				cols = append(cols, e)
				break
			}
		}
	}
	return cols
}

// Row renders r as a table row.
func (r Record) Row() table.Row {
	row := table.Row{
		"dataset": r.Dataset,
		"id":      deref(r.ID),
		"name":    deref(r.Name),
		"smiles":  deref(r.SMILES),
		"inchi":   deref(r.InChI),
		"adduct":  r.Adduct,
		"ccs":     table.FormatFloat(r.CCS),
		"is_3D":   formatBool(r.Is3D),
		"gas":     r.Gas,
	}
	if r.MZ != nil {
		row[ExtraMZ] = table.FormatFloat(*r.MZ)
	}
	row[ExtraType] = deref(r.Type)
	if r.Charge != nil {
		row[ExtraCharge] = strconv.Itoa(*r.Charge)
	}
	row[ExtraFormula] = deref(r.Formula)
	return row
}

// Table builds the canonical table for records with the given extras.
func Table(records []Record, extras []string) *table.Table {
	t := table.New(Columns(extras)...)
	for _, r := range records {
		t.AddRow(r.Row())
	}
	return t
}

// WriteFile writes records as a comma-delimited canonical dataset file.
func WriteFile(path string, records []Record, extras []string) error {
	return Table(records, extras).WriteFile(path, table.WriteOptions{Delimiter: ','})
}

// ReadFile loads a canonical dataset file. Rows with a null ccs are rejected.
func ReadFile(path string) ([]Record, error) {
	t, err := table.ReadFile(path, table.ReadOptions{Delimiter: ','})
	if err != nil {
		return nil, err
	}
	if col, missing := t.FirstMissing("dataset", "adduct", "ccs"); missing {
		return nil, fmt.Errorf("%s: not a canonical dataset: missing column %q", path, col)
	}
	out := make([]Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		ccs, ok := row.Float("ccs")
		if !ok {
			return nil, fmt.Errorf("%s: row %d: null ccs", path, i+2)
		}
		rec := Record{
			Dataset: row["dataset"],
			ID:      row.Ptr("id"),
			Name:    row.Ptr("name"),
			SMILES:  row.Ptr("smiles"),
			InChI:   row.Ptr("inchi"),
			CCS:     ccs,
			Is3D:    ParseBool(row["is_3D"]),
			Gas:     row["gas"],
			Type:    row.Ptr(ExtraType),
			Charge:  ParseInt(row[ExtraCharge]),
			Formula: row.Ptr(ExtraFormula),
		}
		rec.Adduct, _ = row.Value("adduct")
		if mz, ok := row.Float(ExtraMZ); ok {
			rec.MZ = &mz
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseBool reads the flag spellings found in the raw sources. Unknown text is null.
func ParseBool(s string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "1.0":
		b = true
	case "false", "f", "no", "n", "0", "0.0":
		b = false
	default:
		return nil
	}
	return &b
}

// ParseInt reads an integer cell, accepting integral floats such as "1.0".
func ParseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return &i
	}
	f, ok := table.ParseFloat(s)
	if !ok || f != float64(int(f)) {
		return nil
	}
	i := int(f)
	return &i
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "True"
	}
	return "False"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
