package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccsbench/ccsbench/internal/manifest"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace isolates a test in a fresh working directory and HOME.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

// resetFlags clears sticky flag values left by a previous invocation.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		resetFlags(c.Flags())
	}
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// runCLI executes args and fails the test on error.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const ccsbaseRaw = "id,name,adduct,m/z,ccs,smi,type,z\n" +
	"1,Caffeine,[M+H]+,195.0,130.5,CN1C=NC2=C1C(=O)N(C)C(=O)N2C,drug,1\n" +
	"2,Ethanol,[M+Na]+,69.0,110.2,CCO,solvent,1\n"

func TestCLI_CleanPrepareList(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "datasets", "ccsbase_descriptors.csv"), ccsbaseRaw)

	out := runCLI(t, "clean", "ccsbase")
	assert.Contains(t, out, "✓ Saved ccsbase cleaned dataset (2 records) -> "+filepath.Join("data", "dataset_ccsbase.csv"))

	out = runCLI(t, "prepare-inputs", "ccsbase", "--tools", "deepccs,ccsp2")
	assert.Contains(t, out, filepath.Join("tmp", "ccsbase", "deepccs", "datadeepccs.csv"))
	b, err := os.ReadFile(filepath.Join(dir, "tmp", "ccsbase", "deepccs", "datadeepccs.csv"))
	require.NoError(t, err)
	assert.Equal(t, "SMILES,Adducts\nCN1C=NC2=C1C(=O)N(C)C(=O)N2C,M+H\nCCO,M+Na\n", string(b))
	assert.NoFileExists(t, filepath.Join(dir, "tmp", "ccsbase", "hyperccs", "datahyperccs.csv"))

	out = runCLI(t, "list", "--datasets")
	assert.Equal(t, "- ccsbase: "+filepath.Join("data", "dataset_ccsbase.csv")+"\n", out)
	out = runCLI(t, "list", "--sources")
	assert.Contains(t, out, "- metlinims: ")
}

func TestCLI_CleanReportsSchemaErrorAfterAllSources(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "datasets", "ccsbase_descriptors.csv"), ccsbaseRaw)
	write(t, filepath.Join(dir, "datasets", "AllCCS2_experimental_with_inchis_descriptors.csv"), "Name,Adduct\nx,[M+H]+\n")

	_, errOut, err := execute(t, "clean", "allccs", "ccsbase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 sources failed")
	assert.Contains(t, errOut, "✗ allccs:")
	assert.NotContains(t, errOut, "Error:", "the error is printed once, by Execute")
	assert.FileExists(t, filepath.Join(dir, "data", "dataset_ccsbase.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "data", "dataset_allccs.csv"))
}

func TestCLI_CleanContinuesPastMissingRawFile(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "datasets", "ccsbase_descriptors.csv"), ccsbaseRaw)

	out, errOut, err := execute(t, "clean", "allccs", "ccsbase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 sources failed: [allccs]")
	assert.Contains(t, errOut, "✗ allccs: read allccs source")
	assert.Contains(t, out, "✓ Saved ccsbase cleaned dataset (2 records)")
	assert.FileExists(t, filepath.Join(dir, "data", "dataset_ccsbase.csv"))
}

func TestCLI_JoinMetricsAndCompounds(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "results", "d1", "t1", "metricst1.csv"),
		"Dataset;Tool;Mean_abs;SD_abs;Mean_perc;SD_perc;Outliers\nd1;t1;2;1;1.5;0.5;0\n")
	write(t, filepath.Join(dir, "results", "d1", "t1", "joinedt1.csv"),
		"SMILES;Adduct;CCS;Predicted CCS;percentage_difference\nCCO;[M+H]+;130.5;128;-1.9\n")

	out, errOut, err := execute(t, "join-metrics", "--datasets", "d1", "--tools", "t1,t2")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Saved joined metrics (1 rows from 1 files) -> "+filepath.Join("benchmark", "joined_metrics.csv"))
	assert.Contains(t, errOut, "⚠ Warning: file not found for dataset d1, tool t2")
	assert.Equal(t, 1, strings.Count(errOut, "tool t2"), "missing file reported once")
	assert.NotContains(t, errOut, "level=WARN")

	custom := filepath.Join(dir, "out", "c.csv")
	runCLI(t, "build-compounds-table", "d1", "--tools", "t1,t2", "-o", custom)
	b, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "SMILES,Adduct,CCS,CCS_t1,err_perc_t1\nCCO,[M+H]+,130.5,128,-1.9\n", string(b))

	// nothing to join is a warning, not a failure
	_, errOut, err = execute(t, "build-compounds-table", "d2", "--tools", "t1")
	require.NoError(t, err)
	assert.Contains(t, errOut, "nothing written")
}

func TestCLI_RunBenchmarkWithScript(t *testing.T) {
	dir := workspace(t)
	script := filepath.Join(dir, "report.sh")
	write(t, script, "#!/bin/sh\necho \"$1 $2\" > \"joined$1.csv\"\n")
	require.NoError(t, os.Chmod(script, 0o755))
	write(t, filepath.Join(dir, "ccsbench.yaml"), "report_command: [\"/bin/sh\", \""+script+"\"]\n")
	write(t, filepath.Join(dir, "data", "dataset_d1.csv"), "dataset,adduct,ccs\nd1,[M+H]+,1\n")
	write(t, filepath.Join(dir, "predictions", "d1", "t1.csv"), "SMILES\nCCO\n")

	out, errOut, err := execute(t, "run-benchmark", "--datasets", "d1", "--tools", "t1,t2")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "✓ Saved report d1/t1 -> "+filepath.Join("results", "d1", "t1", "run.json"))
	assert.Contains(t, errOut, "tool t2")

	b, err := os.ReadFile(filepath.Join(dir, "results", "d1", "t1", "joinedt1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "t1 d1\n", string(b))
	m, err := manifest.Load(filepath.Join(dir, "results", "d1", "t1"))
	require.NoError(t, err)
	assert.Equal(t, manifest.StatusOK, m.Status)
}

func TestCLI_SummarizeAndExport(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "results", "d1", "t1", "joinedt1.csv"),
		"SMILES;Adduct;CCS;Predicted CCS\nA;[M+H]+;100;102\nB;[M+H]+;200;196\n")

	out := runCLI(t, "summarize", "d1", "t1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Dataset;Tool;Mean_abs;SD_abs;Mean_perc;SD_perc;Outliers", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "d1;t1;3.0000;"), lines[1])

	summary := filepath.Join(dir, "summary.csv")
	runCLI(t, "summarize", "d1", "t1", "-o", summary)
	assert.FileExists(t, summary)

	db := filepath.Join(dir, "bench.db")
	out = runCLI(t, "export", "--db", db, "--delimiter", ";", summary)
	assert.Contains(t, out, "✓ Saved table summary (1 rows)")
	assert.FileExists(t, db)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	dir := workspace(t)
	cfgPath := filepath.Join(dir, "cfg.yaml")

	runCLI(t, "--config", cfgPath, "config", "init")
	runCLI(t, "--config", cfgPath, "config", "set", "tools", "deepccs, ccsp2")
	runCLI(t, "--config", cfgPath, "config", "set", "sources.metlinims.delimiter", "tab")

	out := runCLI(t, "--config", cfgPath, "config", "show")
	assert.Contains(t, out, "tools: deepccs,ccsp2\n")
	assert.Contains(t, out, "sources.metlinims: file= delimiter=tab sheet=\n")

	_, _, err := execute(t, "--config", cfgPath, "config", "set", "workers", "zero")
	assert.Error(t, err)
	_, _, err = execute(t, "--config", cfgPath, "config", "set", "sources.metlinims.delimiter", "|")
	assert.Error(t, err)
}
