package toolinput

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccsbench/ccsbench/internal/canonical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func fixture() []canonical.Record {
	return []canonical.Record{
		{Dataset: "d1", SMILES: ptr("CCO"), Adduct: "[M+H]+", CCS: 130.5, Gas: canonical.DefaultGas},
		{Dataset: "d1", SMILES: ptr("CCO"), Adduct: "[M+Na]+", CCS: 140.1, Gas: canonical.DefaultGas},
		{Dataset: "d1", Adduct: "[M+H]+", CCS: 120, Gas: canonical.DefaultGas},
		{Dataset: "d1", SMILES: ptr("CCN"), Adduct: "[M-H]-", CCS: 125, Gas: canonical.DefaultGas},
		{Dataset: "d1", SMILES: ptr("CCO"), Adduct: "[M+H]+", CCS: 131, Gas: canonical.DefaultGas},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestPrepareAllTools(t *testing.T) {
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	out, err := Prepare(fixture(), dir, "d1", Tools(), log)
	require.NoError(t, err)
	require.Len(t, out, 6)

	file := func(tool string) string {
		f, ok := Lookup(tool)
		require.True(t, ok)
		return filepath.Join(dir, "d1", tool, f.File)
	}
	assert.Equal(t, []string{"Adduct,Smiles,Name", "All,CCO,CCO", "All,CCN,CCN"}, readLines(t, file("ccsbase")))
	assert.Equal(t, []string{"0,CCO", "1,CCN"}, readLines(t, file("allccs")))
	assert.Equal(t, []string{"SMILES", "CCO", "CCN"}, readLines(t, file("darkchem")))
	assert.Equal(t, []string{"SMILES,Adducts", "CCO,M+H", "CCO,M+Na", "CCN,M-H"}, readLines(t, file("deepccs")))
	assert.Equal(t, []string{"SMILES", "CCO", "CCN"}, readLines(t, file("hyperccs")))

	ccsp2 := readLines(t, file("ccsp2"))
	require.Len(t, ccsp2, 9)
	assert.Equal(t, "CCO,M+H", ccsp2[1])
	assert.Equal(t, "CCN,M-2H", ccsp2[8])
}

func TestPrepareSkipsUnknownTool(t *testing.T) {
	var logs strings.Builder
	log := slog.New(slog.NewTextHandler(&logs, nil))
	out, err := Prepare(fixture(), t.TempDir(), "d1", []string{"nope", "hyperccs"}, log)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "hyperccs", out[0].Tool)
	assert.Equal(t, 2, out[0].Rows)
	assert.Contains(t, logs.String(), "tool=nope")
}

func TestPrepareFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "dataset_d1.csv")
	require.NoError(t, canonical.WriteFile(src, fixture(), nil))
	out, err := PrepareFile(src, dir, "d1", []string{"darkchem"}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"SMILES", "CCO", "CCN"}, readLines(t, out[0].Path))
}

func TestNormalizeAdduct(t *testing.T) {
	for in, want := range map[string]string{
		"[M+H]+":    "M+H",
		" [M-2H]2-": "M-2H",
		"M+Na":      "M+Na",
		"[broken":   "[broken",
	} {
		assert.Equal(t, want, NormalizeAdduct(in), in)
	}
}
