package sources

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccsbench/ccsbench/internal/canonical"
	"github.com/ccsbench/ccsbench/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRaw(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readLines(t *testing.T, p string) []string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestRegistryHasBuiltins(t *testing.T) {
	assert.Equal(t, []string{"allccs", "ccsbase", "metlinims", "metlinlipidims"}, Names())
	a, ok := Lookup("ccsbase")
	require.True(t, ok)
	assert.Equal(t, "ccsbase_descriptors.csv", a.DefaultFile)
	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestCCSBaseCaffeine(t *testing.T) {
	in := writeRaw(t, "ccsbase_descriptors.csv",
		"id,name,adduct,m/z,ccs,smi,type,z,ref,ccs_type,ccs_method\n"+
			"1,Caffeine,[M+H]+,195.0,130.5,CN1C=NC2=C1C(=O)N(C)C(=O)N2C,drug,1,ref1,DT,single\n"+
			"2,Broken,[M+H]+,200.1,,CCO,drug,1,ref1,DT,single\n")
	out := filepath.Join(t.TempDir(), "dataset_ccsbase.csv")
	a, _ := Lookup("ccsbase")

	res, err := Normalize(a, in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.RawRows)
	assert.Equal(t, 1, res.Records)

	lines := readLines(t, out)
	require.Len(t, lines, 2)
	assert.Equal(t, "dataset,id,name,smiles,inchi,adduct,ccs,is_3D,gas,mz,type,charge", lines[0])
	assert.Equal(t, "ccsbase,1,Caffeine,CN1C=NC2=C1C(=O)N(C)C(=O)N2C,,[M+H]+,130.5,,N2,195,drug,1", lines[1])
}

func TestAllCCSCarriesBothStructures(t *testing.T) {
	in := writeRaw(t, "allccs.csv",
		"AllCCS ID,Name,Structure,Formula,Type,Adduct,m/z,CCS,Confidence level,Update date,InChI,is_3D\n"+
			"AllCCS00000001,Glycine,NCC(=O)O,C2H5NO2,Small molecule,[M+H]+,76.04,115.2,Conflicted,2020,InChI=1S/C2H5NO2,True\n")
	a, _ := Lookup("allccs")
	recs, _, err := Convert(a, in, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "allccs", r.Dataset)
	assert.Equal(t, "AllCCS00000001", *r.ID)
	assert.Equal(t, "NCC(=O)O", *r.SMILES)
	assert.Equal(t, "InChI=1S/C2H5NO2", *r.InChI)
	assert.Equal(t, "C2H5NO2", *r.Formula)
	assert.Equal(t, "Small molecule", *r.Type)
	assert.True(t, *r.Is3D)
	assert.Nil(t, r.Charge)
}

func TestMetlinIMSDelimiterIsConfiguration(t *testing.T) {
	header := []string{"Molecule Name", "Molecular Formula", "METLIN ID", "Precursor Adduct", "CCS1", "Adduct", "CCS", "m/z", "inchi", "smiles"}
	row := []string{"Glucose", "C6H12O6", "42", "[M+Na]+", "150.0", "[M+Na]+", "150.2", "203.05", "InChI=1S/C6H12O6", "OCC1OC(O)C(O)C(O)C1O"}
	a, _ := Lookup("metlinims")

	for _, delim := range []rune{',', '\t'} {
		sep := string(delim)
		in := writeRaw(t, "metlin_ims.txt", strings.Join(header, sep)+"\n"+strings.Join(row, sep)+"\n")
		recs, _, err := Convert(a, in, Options{Delimiter: delim})
		require.NoError(t, err, "delimiter %q", delim)
		require.Len(t, recs, 1)
		assert.Equal(t, "42", *recs[0].ID)
		assert.Equal(t, "[M+Na]+", recs[0].Adduct)
		assert.Equal(t, 150.2, recs[0].CCS)
		assert.Equal(t, 203.05, *recs[0].MZ)
		assert.Nil(t, recs[0].Is3D, "optional is_3D absent")
	}
}

func TestMetlinIMSRepeatedHeadersKeepColumnsAligned(t *testing.T) {
	in := writeRaw(t, "METLIN_IMS_descriptors.tsv",
		"Molecule Name,METLIN ID,Adduct,m/z,Dimer,m/z,Dimer,CCS,m/z,inchi,smiles\n"+
			"Glucose,42,[M+Na]+,203.05,no,405.1,yes,150.2,610.3,InChI=1S/C6H12O6,OCC1OC(O)C(O)C(O)C1O\n")
	a, _ := Lookup("metlinims")

	recs, _, err := Convert(a, in, Options{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 150.2, recs[0].CCS)
	assert.Equal(t, "OCC1OC(O)C(O)C(O)C1O", *recs[0].SMILES)
	assert.Equal(t, "InChI=1S/C6H12O6", *recs[0].InChI)
	assert.Equal(t, 203.05, *recs[0].MZ, "first m/z column wins")
}

func TestMissingRequiredColumnIsSchemaError(t *testing.T) {
	in := writeRaw(t, "ccsbase_descriptors.csv", "id,name,adduct,ccs\n1,x,[M+H]+,100\n")
	out := filepath.Join(t.TempDir(), "dataset_ccsbase.csv")
	a, _ := Lookup("ccsbase")

	_, err := Normalize(a, in, out, Options{})
	var se *SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, "smi", se.Column)
	assert.Equal(t, in, se.File)
	assert.Contains(t, err.Error(), "smi")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output on schema error")
}

func TestMetlinLipidsMelt(t *testing.T) {
	in := writeRaw(t, "lipids.csv",
		"Name,Formula,RT,InChI,CCS [M+H]+,CCS [M+Na]+,CCS [M-H]-,is_3D\n"+
			"LipidA,C40H77NO8P,5.1,InChI=1S/LipidA,250.1,,245.3,False\n"+
			"LipidB,C42H80NO8P,5.4,InChI=1S/LipidB,,260.7,,True\n")
	out := filepath.Join(t.TempDir(), "dataset_metlinlipidims.csv")
	a, _ := Lookup("metlinlipidims")

	res, err := Normalize(a, in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records, "one record per non-null CCS cell")

	recs, err := canonical.ReadFile(out)
	require.NoError(t, err)
	got := map[string]float64{}
	for _, r := range recs {
		assert.Nil(t, r.SMILES)
		assert.Nil(t, r.ID)
		require.NotNil(t, r.InChI)
		got[*r.Name+" "+r.Adduct] = r.CCS
	}
	assert.Equal(t, map[string]float64{
		"LipidA [M+H]+":  250.1,
		"LipidA [M-H]-":  245.3,
		"LipidB [M+Na]+": 260.7,
	}, got)
	lines := readLines(t, out)
	assert.Equal(t, "dataset,id,name,smiles,inchi,adduct,ccs,is_3D,gas,formula", lines[0])
}

func TestMetlinLipidsRequiresIdentityColumns(t *testing.T) {
	in := writeRaw(t, "lipids.csv", "Name,InChI,CCS [M+H]+\nL,InChI=1S/L,200\n")
	a, _ := Lookup("metlinlipidims")
	_, _, err := Convert(a, in, Options{})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Formula", se.Column)
}

func TestNoNullCCSInAnyAdapterOutput(t *testing.T) {
	raws := map[string]string{
		"ccsbase": "id,name,adduct,ccs,smi\n1,a,[M+H]+,,C\n2,b,[M+H]+,NaN,CC\n3,c,[M+H]+,101.5,CCC\n",
		"allccs":  "AllCCS ID,Name,Structure,InChI,Adduct,CCS\nA1,a,C,I1,[M+H]+,\nA2,b,CC,I2,[M+H]+,99\n",
		"metlinlipidims": "Name,Formula,InChI,is_3D,CCS [M+H]+,CCS [M+Na]+\n" +
			"a,F,I,False,,\nb,F,I,False,120,\n",
		"metlinims": "METLIN ID,Molecule Name,smiles,inchi,Adduct,CCS\n1,a,C,I,[M+H]+,\n2,b,CC,I,[M+H]+,140\n",
	}
	for source, content := range raws {
		a, ok := Lookup(source)
		require.True(t, ok)
		in := writeRaw(t, source+".csv", content)
		out := filepath.Join(t.TempDir(), "dataset_"+a.Dataset+".csv")
		res, err := Normalize(a, in, out, Options{})
		require.NoError(t, err, source)
		assert.Equal(t, 1, res.Records, source)

		tb, err := table.ReadFile(out, table.ReadOptions{})
		require.NoError(t, err)
		for _, row := range tb.Rows {
			_, ok := row.Float("ccs")
			assert.True(t, ok, "%s: null ccs in output", source)
			assert.Equal(t, a.Dataset, row["dataset"])
		}
	}
}
