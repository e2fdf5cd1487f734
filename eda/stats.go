// Package eda computes the descriptive statistics and plots of the flu-shot
// walkthrough: label distributions, the joint h1n1 × seasonal table, the phi
// coefficient and vaccination rates per feature level.
package eda

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Count is one row of ValueCounts.
type Count struct {
	Value float64
	// Frequency is the raw count, or the share of non-missing values when normalised.
	Frequency float64
}

// ValueCounts counts each distinct non-NaN value, most frequent first. Ties
// are ordered by value.
func ValueCounts(values []float64, normalize bool) []Count {
	freq := make(map[float64]int)
	total := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		freq[v]++
		total++
	}

	out := make([]Count, 0, len(freq))
	for v, n := range freq {
		f := float64(n)
		if normalize {
			f /= float64(total)
		}
		out = append(out, Count{Value: v, Frequency: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Table is a two-way frequency table.
type Table struct {
	RowLevels []float64
	ColLevels []float64
	// Counts[i][j] is the count (or share of all pairs) of RowLevels[i] × ColLevels[j].
	Counts *mat.Dense
}

// Crosstab tabulates the joint distribution of a and b. Pairs where either
// side is NaN are skipped. With normalize every cell is divided by the number
// of pairs counted.
func Crosstab(a, b []float64, normalize bool) (*Table, error) {
	if len(a) != len(b) {
		return nil, errors.NewDimensionError("Crosstab", len(a), len(b), 0)
	}
	rows, cols := levelsOf(a), levelsOf(b)
	if len(rows) == 0 || len(cols) == 0 {
		return nil, errors.NewValueError("Crosstab", "no complete pairs")
	}
	rowIdx, colIdx := indexOf(rows), indexOf(cols)

	counts := mat.NewDense(len(rows), len(cols), nil)
	total := 0.0
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		r, c := rowIdx[a[i]], colIdx[b[i]]
		counts.Set(r, c, counts.At(r, c)+1)
		total++
	}
	if normalize {
		counts.Scale(1/total, counts)
	}
	return &Table{RowLevels: rows, ColLevels: cols, Counts: counts}, nil
}

func levelsOf(v []float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, x := range v {
		if !math.IsNaN(x) && !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}

func indexOf(levels []float64) map[float64]int {
	idx := make(map[float64]int, len(levels))
	for i, l := range levels {
		idx[l] = i
	}
	return idx
}

// PhiCoefficient is the Pearson correlation of two binary vectors. It is NaN,
// with an UndefinedMetricWarning, when either vector is constant.
func PhiCoefficient(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.NewDimensionError("PhiCoefficient", len(a), len(b), 0)
	}
	if len(a) < 2 {
		return 0, errors.NewValueError("PhiCoefficient", "need at least 2 observations")
	}
	for i := range a {
		if (a[i] != 0 && a[i] != 1) || (b[i] != 0 && b[i] != 1) {
			return 0, errors.NewValueError("PhiCoefficient", "values must be 0 or 1")
		}
	}
	phi := stat.Correlation(a, b, nil)
	if math.IsNaN(phi) {
		errors.Warn(errors.NewUndefinedMetricWarning("PhiCoefficient", "one of the vectors is constant", phi))
	}
	return phi, nil
}

// LevelRate is the target split of one feature level.
type LevelRate struct {
	Level string
	Count int
	// Negative and Positive are the shares of target 0 and 1 within the level.
	Negative float64
	Positive float64
}

// RateByLevel computes the vaccination rate per feature level. Rows with a
// missing level ("") are excluded. Levels are sorted as strings.
func RateByLevel(levels []string, target []float64) ([]LevelRate, error) {
	if len(levels) != len(target) {
		return nil, errors.NewDimensionError("RateByLevel", len(levels), len(target), 0)
	}

	type acc struct{ n, pos int }
	groups := make(map[string]*acc)
	for i, l := range levels {
		if l == "" {
			continue
		}
		if target[i] != 0 && target[i] != 1 {
			return nil, errors.NewValueError("RateByLevel", "target must be 0 or 1")
		}
		g, ok := groups[l]
		if !ok {
			g = &acc{}
			groups[l] = g
		}
		g.n++
		if target[i] == 1 {
			g.pos++
		}
	}

	out := make([]LevelRate, 0, len(groups))
	for l, g := range groups {
		pos := float64(g.pos) / float64(g.n)
		out = append(out, LevelRate{Level: l, Count: g.n, Negative: 1 - pos, Positive: pos})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}
