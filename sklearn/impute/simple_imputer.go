// Package impute replaces missing values (NaN) with per-column statistics,
// following scikit-learn's SimpleImputer.
package impute

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/core/parallel"
	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Strategy selects the statistic learned per column.
type Strategy string

// Supported strategies.
const (
	Median       Strategy = "median"
	Mean         Strategy = "mean"
	MostFrequent Strategy = "most_frequent"
	Constant     Strategy = "constant"
)

// columnParallelThreshold is the column count above which statistics are
// computed concurrently.
const columnParallelThreshold = 8

// SimpleImputer fills NaN cells with a statistic learned during Fit.
type SimpleImputer struct {
	state *model.StateManager

	strategy Strategy
	// fillValue is used by the constant strategy and for columns with no
	// observed value.
	fillValue float64

	// Statistics holds the learned fill value per column.
	Statistics []float64
}

// Option configures a SimpleImputer.
type Option func(*SimpleImputer)

// WithStrategy sets the imputation strategy. Default is Median.
func WithStrategy(s Strategy) Option {
	return func(im *SimpleImputer) { im.strategy = s }
}

// WithFillValue sets the constant fill value. Default is 0.
func WithFillValue(v float64) Option {
	return func(im *SimpleImputer) { im.fillValue = v }
}

// NewSimpleImputer creates a SimpleImputer with the median strategy.
//
//	imp := impute.NewSimpleImputer()
//	Xt, err := imp.FitTransform(X)
func NewSimpleImputer(opts ...Option) *SimpleImputer {
	im := &SimpleImputer{
		state:    model.NewStateManager(),
		strategy: Median,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Strategy returns the configured strategy.
func (im *SimpleImputer) Strategy() Strategy { return im.strategy }

// IsFitted reports whether Fit has completed.
func (im *SimpleImputer) IsFitted() bool { return im.state.IsFitted() }

// Fit learns one statistic per column from its non-NaN values.
func (im *SimpleImputer) Fit(X mat.Matrix) error {
	im.state.Reset()
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	var stat func([]float64) float64
	switch im.strategy {
	case Median:
		stat = median
	case Mean:
		stat = func(v []float64) float64 { return floats.Sum(v) / float64(len(v)) }
	case MostFrequent:
		stat = mostFrequent
	case Constant:
		stat = func([]float64) float64 { return im.fillValue }
	default:
		return errors.NewValidationError("strategy", "must be one of median, mean, most_frequent, constant", string(im.strategy))
	}

	statistics := make([]float64, c)
	allMissing := make([]bool, c)
	parallel.Chunks(c, columnParallelThreshold, func(start, end int) {
		observed := make([]float64, 0, r)
		for j := start; j < end; j++ {
			observed = observed[:0]
			for i := 0; i < r; i++ {
				if v := X.At(i, j); !math.IsNaN(v) {
					observed = append(observed, v)
				}
			}
			if len(observed) == 0 && im.strategy != Constant {
				statistics[j] = im.fillValue
				allMissing[j] = true
				continue
			}
			statistics[j] = stat(observed)
		}
	})

	for j, missing := range allMissing {
		if missing {
			errors.Warn(errors.NewAllMissingWarning("SimpleImputer.Fit", j, im.fillValue))
		}
	}

	im.Statistics = statistics
	im.state.MarkFitted(c, r)
	return nil
}

// Transform returns a copy of X with NaN cells replaced by the learned statistics.
func (im *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.state.RequireFitted("SimpleImputer", "Transform"); err != nil {
		return nil, err
	}
	if err := im.state.RequireFeatures("SimpleImputer.Transform", X); err != nil {
		return nil, err
	}

	out := mat.DenseCopyOf(X)
	out.Apply(func(_, j int, v float64) float64 {
		if math.IsNaN(v) {
			return im.Statistics[j]
		}
		return v
	}, out)
	return out, nil
}

// FitTransform fits on X and imputes it.
func (im *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

// GetParams returns the imputer hyperparameters.
func (im *SimpleImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy":   string(im.strategy),
		"fill_value": im.fillValue,
	}
}

func (im *SimpleImputer) String() string {
	return fmt.Sprintf("SimpleImputer(strategy=%s)", im.strategy)
}

// median sorts v in place and averages the two middle values for even lengths.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// mostFrequent returns the modal value, the smallest one on ties.
func mostFrequent(v []float64) float64 {
	sort.Float64s(v)
	best, bestCount := v[0], 0
	for i := 0; i < len(v); {
		j := i
		for j < len(v) && v[j] == v[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = v[i], j-i
		}
		i = j
	}
	return best
}
