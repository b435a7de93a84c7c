package benchmark

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ccsbench/ccsbench/internal/table"
	"gonum.org/v1/gonum/stat"
)

// DefaultOutlierThreshold is the robust |z| above which a percentage error counts as an outlier.
const DefaultOutlierThreshold = 3.5

// MetricsSummary is one (dataset, tool) row of aggregate error statistics.
type MetricsSummary struct {
	Dataset  string
	Tool     string
	N        int
	MeanAbs  float64
	SDAbs    float64
	MeanPerc float64
	SDPerc   float64
	Outliers int
}

// Row renders s with the metrics summary columns.
func (s MetricsSummary) Row() table.Row {
	f := func(x float64) string {
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', 4, 64)
	}
	return table.Row{
		ColDataset:  s.Dataset,
		ColTool:     s.Tool,
		ColMeanAbs:  f(s.MeanAbs),
		ColSDAbs:    f(s.SDAbs),
		ColMeanPerc: f(s.MeanPerc),
		ColSDPerc:   f(s.SDPerc),
		ColOutliers: strconv.Itoa(s.Outliers),
	}
}

// SummaryTable renders summaries as a metrics table.
func SummaryTable(sums ...MetricsSummary) *table.Table {
	t := table.New(MetricsColumns...)
	for _, s := range sums {
		t.AddRow(s.Row())
	}
	return t
}

// Summarize recomputes the metrics summary of (dataset, tool) from its joined
// comparison file. Absolute error is |Predicted CCS - CCS|; percentage error is
// percentage_difference when present, else 100*abs/CCS. Rows lacking either CCS
// value are ignored. Outliers counts robust |z| (median/MAD) of percentage error
// above threshold.
func Summarize(cfg Config, dataset, tool string, threshold float64) (*MetricsSummary, error) {
	path := cfg.Layout.JoinedFile(dataset, tool)
	t, err := table.ReadFile(path, table.ReadOptions{Delimiter: ';'})
	if err != nil {
		return nil, fmt.Errorf("read joined file: %w", err)
	}
	for _, col := range []string{ColCCS, ColPredictedCCS} {
		if !t.Has(col) {
			return nil, &MissingRequiredColumnError{Path: path, Column: col}
		}
	}
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}

	var abs, perc []float64
	for _, r := range t.Rows {
		truth, ok1 := r.Float(ColCCS)
		pred, ok2 := r.Float(ColPredictedCCS)
		if !ok1 || !ok2 {
			continue
		}
		a := math.Abs(pred - truth)
		p, ok := r.Float(ColPercDiff)
		if !ok {
			if truth == 0 {
				continue
			}
			p = 100 * a / math.Abs(truth)
		}
		abs = append(abs, a)
		perc = append(perc, math.Abs(p))
	}

	s := &MetricsSummary{Dataset: dataset, Tool: tool, N: len(abs)}
	if len(abs) == 0 {
		s.MeanAbs, s.SDAbs, s.MeanPerc, s.SDPerc = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s, nil
	}
	s.MeanAbs, s.SDAbs = stat.MeanStdDev(abs, nil)
	s.MeanPerc, s.SDPerc = stat.MeanStdDev(perc, nil)
	s.Outliers = robustOutliers(perc, threshold)
	return s, nil
}

// robustOutliers counts values whose robust z-score exceeds threshold.
func robustOutliers(vals []float64, threshold float64) int {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0
	}
	n := 0
	for _, v := range vals {
		z := 0.6745 * (v - median) / mad
		if math.Abs(z) > threshold {
			n++
		}
	}
	return n
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo, hi := int(math.Floor(pos)), int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
