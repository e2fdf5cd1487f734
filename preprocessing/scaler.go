// Package preprocessing provides feature scalers used before imputation.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/core/parallel"
	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// minScale 未満の標準偏差は 1 とみなす（定数列でゼロ除算しない）
const minScale = 1e-8

// StandardScaler centres each column on its mean and divides by its
// population standard deviation (ddof=0).
//
// NaN cells are ignored when fitting and stay NaN after Transform; the
// SimpleImputer that follows in the numeric pipeline fills them.
type StandardScaler struct {
	state *model.StateManager

	// Mean is the per-column mean of the observed cells, or 0 when WithMean is false.
	Mean []float64
	// Scale is the per-column standard deviation, or 1 when WithStd is false
	// or the column is constant.
	Scale []float64

	WithMean bool
	WithStd  bool
}

// NewStandardScaler creates a scaler.
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	Xt, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault is NewStandardScaler(true, true).
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }

// Fit learns Mean and Scale from the non-NaN cells of every column.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	s.state.Reset()

	mean := make([]float64, c)
	scale := make([]float64, c)
	parallel.Chunks(c, 8, func(start, end int) {
		observed := make([]float64, 0, r)
		for j := start; j < end; j++ {
			observed = observed[:0]
			for i := 0; i < r; i++ {
				if v := X.At(i, j); !math.IsNaN(v) {
					observed = append(observed, v)
				}
			}
			mean[j], scale[j] = 0, 1
			if len(observed) == 0 {
				continue
			}
			m, variance := stat.PopMeanVariance(observed, nil)
			if s.WithMean {
				mean[j] = m
			}
			if sd := math.Sqrt(variance); s.WithStd && sd >= minScale {
				scale[j] = sd
			}
		}
	})

	s.Mean, s.Scale = mean, scale
	s.state.MarkFitted(c, r)
	return nil
}

// Transform returns (X - Mean) / Scale, leaving NaN cells untouched.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply(X, "Transform", func(v float64, j int) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	})
}

func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps scaled values back to the original units.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply(X, "InverseTransform", func(v float64, j int) float64 {
		return v*s.Scale[j] + s.Mean[j]
	})
}

func (s *StandardScaler) apply(X mat.Matrix, method string, f func(v float64, j int) float64) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", method); err != nil {
		return nil, err
	}
	if err := s.state.RequireFeatures("StandardScaler."+method, X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, _ float64) float64 {
		if v := X.At(i, j); !math.IsNaN(v) {
			return f(v, j)
		}
		return math.NaN()
	}, out)
	return out, nil
}

func (s *StandardScaler) String() string {
	params := fmt.Sprintf("with_mean=%t, with_std=%t", s.WithMean, s.WithStd)
	if s.IsFitted() {
		params += fmt.Sprintf(", n_features=%d", s.state.NFeatures())
	}
	return "StandardScaler(" + params + ")"
}
