package benchmark

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Layout.JoinedFile("d1", "t1"),
		"SMILES;Adduct;CCS;Predicted CCS\n"+
			"A;[M+H]+;100;102\n"+
			"B;[M+H]+;200;196\n"+
			"C;[M+H]+;;150\n"+
			"D;[M+H]+;50;NaN\n")

	s, err := Summarize(cfg, "d1", "t1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.N)
	assert.InDelta(t, 3.0, s.MeanAbs, 1e-9)
	assert.InDelta(t, math.Sqrt(2), s.SDAbs, 1e-9)
	assert.InDelta(t, 2.0, s.MeanPerc, 1e-9)
	assert.InDelta(t, 0.0, s.SDPerc, 1e-9)
	assert.Equal(t, 0, s.Outliers)

	row := s.Row()
	assert.Equal(t, "3.0000", row[ColMeanAbs])
	assert.Equal(t, "0", row[ColOutliers])
}

func TestSummarizePrefersReportedPercentage(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Layout.JoinedFile("d1", "t1"),
		"SMILES;Adduct;CCS;Predicted CCS;percentage_difference\nA;[M+H]+;100;102;-5\n")
	s, err := Summarize(cfg, "d1", "t1", 0)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, s.MeanPerc, 1e-9)
}

func TestSummarizeNoUsableRows(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Layout.JoinedFile("d1", "t1"), "SMILES;Adduct;CCS;Predicted CCS\nA;[M+H]+;;\n")
	s, err := Summarize(cfg, "d1", "t1", 0)
	require.NoError(t, err)
	assert.Zero(t, s.N)
	assert.True(t, math.IsNaN(s.MeanAbs))
	assert.Empty(t, s.Row()[ColMeanAbs])
}

func TestSummarizeRequiresPrediction(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.Layout.JoinedFile("d1", "t1"), "SMILES;Adduct;CCS\nA;[M+H]+;100\n")
	_, err := Summarize(cfg, "d1", "t1", 0)
	var mrc *MissingRequiredColumnError
	require.True(t, errors.As(err, &mrc))
	assert.Equal(t, ColPredictedCCS, mrc.Column)
}

func TestRobustOutliers(t *testing.T) {
	vals := []float64{1, 1.1, 0.9, 1.05, 0.95, 1, 40}
	assert.Equal(t, 1, robustOutliers(vals, DefaultOutlierThreshold))
	assert.Equal(t, 0, robustOutliers([]float64{2, 2, 2}, DefaultOutlierThreshold))
}

func TestQuantile(t *testing.T) {
	assert.Equal(t, 2.5, quantile([]float64{1, 2, 3, 4}, 0.5))
	assert.Equal(t, 3.0, quantile([]float64{1, 3, 5}, 0.5))
}
