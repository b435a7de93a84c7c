package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	return Config{
		Layout: Layout{
			DataDir:        filepath.Join(root, "data"),
			PredictionsDir: filepath.Join(root, "predictions"),
			ResultsDir:     filepath.Join(root, "results"),
			BenchmarkDir:   filepath.Join(root, "benchmark"),
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// captureConfig returns a config whose log output is collected in buf.
func captureConfig(t *testing.T, buf *strings.Builder) Config {
	cfg := testConfig(t)
	cfg.Logger = slog.New(slog.NewTextHandler(buf, nil))
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// joinedRows renders n joined-file rows for keys start..start+n-1.
func joinedRows(start, n int, withPred bool) string {
	var sb strings.Builder
	if withPred {
		sb.WriteString("SMILES;Adduct;CCS;Predicted CCS;percentage_difference\n")
	} else {
		sb.WriteString("SMILES;Adduct;CCS\n")
	}
	for i := start; i < start+n; i++ {
		if withPred {
			fmt.Fprintf(&sb, "C%d;[M+H]+;%d.5;%d.0;1.2\n", i, 100+i, 101+i)
		} else {
			fmt.Fprintf(&sb, "C%d;[M+H]+;%d.5\n", i, 100+i)
		}
	}
	return sb.String()
}
