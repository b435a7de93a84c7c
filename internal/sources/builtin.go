package sources

import (
	"github.com/ccsbench/ccsbench/internal/canonical"
	"github.com/ccsbench/ccsbench/internal/table"
)

// Dataset tags of the built-in sources.
const (
	DatasetCCSBase       = "ccsbase"
	DatasetAllCCS        = "allccs"
	DatasetMetlinLipids  = "metlinlipidims"
	DatasetMetlinIMS     = "metlinims"
	metlinLipidsFileName = "METLIN-CCS-Lipids_descriptors.csv"
)

func init() {
	// CCSbase: SMILES only, no InChI.
	Register(Adapter{
		Source:      DatasetCCSBase,
		Dataset:     DatasetCCSBase,
		DefaultFile: "ccsbase_descriptors.csv",
		Delimiter:   ',',
		Extras:      []string{canonical.ExtraMZ, canonical.ExtraType, canonical.ExtraCharge},
		Convert: mapping{
			dataset:  DatasetCCSBase,
			required: []string{"id", "name", "smi", "adduct", "ccs"},
			id:       "id", name: "name", smiles: "smi", adduct: "adduct", ccs: "ccs",
			is3D: "is_3D", mz: "m/z", typ: "type", charge: "z",
		}.convert,
	})

	// AllCCS2: Structure holds SMILES, InChI alongside.
	Register(Adapter{
		Source:      DatasetAllCCS,
		Dataset:     DatasetAllCCS,
		DefaultFile: "AllCCS2_experimental_with_inchis_descriptors.csv",
		Delimiter:   ',',
		Extras:      []string{canonical.ExtraMZ, canonical.ExtraType, canonical.ExtraFormula},
		Convert: mapping{
			dataset:  DatasetAllCCS,
			required: []string{"AllCCS ID", "Name", "Structure", "InChI", "Adduct", "CCS"},
			id:       "AllCCS ID", name: "Name", smiles: "Structure", inchi: "InChI", adduct: "Adduct", ccs: "CCS",
			is3D: "is_3D", mz: "m/z", typ: "Type", formula: "Formula",
		}.convert,
	})

	// METLIN-CCS lipids: one row per lipid, one CCS column per adduct, InChI only.
	Register(Adapter{
		Source:      DatasetMetlinLipids,
		Dataset:     DatasetMetlinLipids,
		DefaultFile: metlinLipidsFileName,
		Delimiter:   ',',
		Extras:      []string{canonical.ExtraFormula},
		Wide:        true,
		Convert:     convertMetlinLipids,
	})

	// METLIN IMS: delimiter differs between exports, so it stays configurable.
	Register(Adapter{
		Source:      DatasetMetlinIMS,
		Dataset:     DatasetMetlinIMS,
		DefaultFile: "METLIN_IMS_descriptors.tsv",
		Delimiter:   ',',
		Extras:      []string{canonical.ExtraMZ},
		Convert: mapping{
			dataset:  DatasetMetlinIMS,
			required: []string{"METLIN ID", "Molecule Name", "smiles", "inchi", "Adduct", "CCS"},
			id:       "METLIN ID", name: "Molecule Name", smiles: "smiles", inchi: "inchi", adduct: "Adduct", ccs: "CCS",
			is3D: "is_3D", mz: "m/z",
		}.convert,
	})
}

// metlinLipidsIdentity are the identity columns the wide lipid export must carry.
var metlinLipidsIdentity = []string{"Name", "Formula", "InChI", "is_3D"}

func convertMetlinLipids(t *table.Table) ([]canonical.Record, error) {
	if col, missing := t.FirstMissing(metlinLipidsIdentity...); missing {
		return nil, &SchemaError{Dataset: DatasetMetlinLipids, File: t.Source, Column: col}
	}
	melted := Melter{Prefix: CCSColumnPrefix}.Melt(t)
	out := make([]canonical.Record, 0, len(melted))
	for _, m := range melted {
		rec := canonical.Record{
			Dataset: DatasetMetlinLipids,
			Name:    m.Identity.Ptr("Name"),
			InChI:   m.Identity.Ptr("InChI"),
			CCS:     m.CCS,
			Is3D:    canonical.ParseBool(m.Identity["is_3D"]),
			Gas:     canonical.DefaultGas,
			Formula: m.Identity.Ptr("Formula"),
		}
		if m.Adduct != nil {
			rec.Adduct = *m.Adduct
		}
		out = append(out, rec)
	}
	return out, nil
}
