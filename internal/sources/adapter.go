// Package sources converts heterogeneous raw CCS tables into canonical records.
//
// Each raw source format is a named Adapter held in a registry keyed by source
// identifier. Adapters register themselves from init(), so adding a source is
// one new file.
package sources

import (
	"sort"
	"sync"

	"github.com/ccsbench/ccsbench/internal/canonical"
	"github.com/ccsbench/ccsbench/internal/table"
)

// ConvertFunc maps a raw table to canonical records for one dataset tag. It must
// return a *SchemaError when a required column is absent.
type ConvertFunc func(t *table.Table) ([]canonical.Record, error)

// Adapter describes one raw source format.
type Adapter struct {
	// Source identifies the adapter in the registry and in configuration.
	Source string
	// Dataset is the tag stamped on every record.
	Dataset string
	// DefaultFile is the raw file name looked up under the raw data directory.
	DefaultFile string
	// Delimiter of the raw file; 0 sniffs from the extension.
	Delimiter rune
	// Extras lists the optional canonical columns this adapter emits.
	Extras []string
	// Wide adapters emit one record per non-null CCS cell rather than per row.
	Wide    bool
	Convert ConvertFunc
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Adapter{}
)

// Register adds an adapter to the registry, replacing any previous one with the same Source.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[a.Source] = a
}

// Lookup returns the adapter registered for source.
func Lookup(source string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[source]
	return a, ok
}

// Names returns registered source identifiers in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// mapping describes a one-row-to-one-record conversion by source column name.
// Empty names mean the source has no such column.
type mapping struct {
	dataset  string
	required []string

	id, name, smiles, inchi, adduct, ccs string
	is3D, mz, typ, charge, formula       string
}

// convert applies the mapping to every row. Rows whose CCS is null are dropped.
func (m mapping) convert(t *table.Table) ([]canonical.Record, error) {
	if col, missing := t.FirstMissing(m.required...); missing {
		return nil, &SchemaError{Dataset: m.dataset, File: t.Source, Column: col}
	}
	out := make([]canonical.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		ccs, ok := row.Float(m.ccs)
		if !ok {
			continue
		}
		rec := canonical.Record{
			Dataset: m.dataset,
			ID:      optional(row, m.id),
			Name:    optional(row, m.name),
			SMILES:  optional(row, m.smiles),
			InChI:   optional(row, m.inchi),
			CCS:     ccs,
			Gas:     canonical.DefaultGas,
			Type:    optional(row, m.typ),
			Formula: optional(row, m.formula),
		}
		if m.adduct != "" {
			rec.Adduct, _ = row.Value(m.adduct)
		}
		if m.is3D != "" {
			rec.Is3D = canonical.ParseBool(row[m.is3D])
		}
		if m.mz != "" {
			if mz, ok := row.Float(m.mz); ok {
				rec.MZ = &mz
			}
		}
		if m.charge != "" {
			rec.Charge = canonical.ParseInt(row[m.charge])
		}
		out = append(out, rec)
	}
	return out, nil
}

func optional(row table.Row, col string) *string {
	if col == "" {
		return nil
	}
	return row.Ptr(col)
}
