package impute

import (
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

var nan = math.NaN()

func TestSimpleImputer_Strategies(t *testing.T) {
	X := mat.NewDense(5, 2, []float64{
		1, 4,
		nan, 4,
		3, nan,
		10, 1,
		2, 2,
	})

	tests := []struct {
		name string
		opts []Option
		want []float64
	}{
		{"median even count", nil, []float64{2.5, 3}},
		{"mean", []Option{WithStrategy(Mean)}, []float64{4, 2.75}},
		{"most_frequent", []Option{WithStrategy(MostFrequent)}, []float64{1, 4}},
		{"constant", []Option{WithStrategy(Constant), WithFillValue(-1)}, []float64{-1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := NewSimpleImputer(tt.opts...)
			Xt, err := imp.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform failed: %v", err)
			}
			for j, want := range tt.want {
				if math.Abs(imp.Statistics[j]-want) > 1e-12 {
					t.Errorf("Statistics[%d] = %v, want %v", j, imp.Statistics[j], want)
				}
			}
			if got := Xt.At(1, 0); got != tt.want[0] {
				t.Errorf("imputed cell = %v, want %v", got, tt.want[0])
			}
			if got := Xt.At(3, 0); got != 10 {
				t.Errorf("observed cell changed to %v", got)
			}
			if !math.IsNaN(X.At(1, 0)) {
				t.Error("input matrix must not be modified")
			}
		})
	}
}

func TestSimpleImputer_OddMedian(t *testing.T) {
	imp := NewSimpleImputer()
	if err := imp.Fit(mat.NewDense(3, 1, []float64{5, 1, 3})); err != nil {
		t.Fatal(err)
	}
	if imp.Statistics[0] != 3 {
		t.Errorf("median = %v, want 3", imp.Statistics[0])
	}
}

func TestSimpleImputer_AllMissingColumnWarns(t *testing.T) {
	var (
		mu       sync.Mutex
		warnings []error
	)
	errors.SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})
	defer errors.SetWarningHandler(func(error) {})

	X := mat.NewDense(2, 2, []float64{1, nan, 2, nan})
	imp := NewSimpleImputer(WithFillValue(0))
	Xt, err := imp.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	if Xt.At(0, 1) != 0 || Xt.At(1, 1) != 0 {
		t.Errorf("all-missing column should be filled with 0, got %v", mat.Formatted(Xt))
	}

	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	var w *errors.AllMissingWarning
	if !errors.As(warnings[0], &w) || w.Column != 1 {
		t.Errorf("unexpected warning %v", warnings[0])
	}
}

func TestSimpleImputer_ManyColumnsMatchesSequential(t *testing.T) {
	const rows, cols = 7, 40
	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if (i+j)%3 == 0 {
				X.Set(i, j, nan)
			} else {
				X.Set(i, j, float64(i*j%11))
			}
		}
	}

	imp := NewSimpleImputer()
	if err := imp.Fit(X); err != nil {
		t.Fatal(err)
	}
	for j := 0; j < cols; j++ {
		var observed []float64
		for i := 0; i < rows; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if want := median(observed); imp.Statistics[j] != want {
			t.Errorf("column %d: got %v, want %v", j, imp.Statistics[j], want)
		}
	}
}

func TestSimpleImputer_Errors(t *testing.T) {
	imp := NewSimpleImputer()
	if _, err := imp.Transform(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("expected NotFittedError")
	}
	if err := imp.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatal(err)
	}
	if _, err := imp.Transform(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("expected DimensionError")
	}

	bad := NewSimpleImputer(WithStrategy("mode"))
	var verr *errors.ValidationError
	if err := bad.Fit(mat.NewDense(1, 1, []float64{1})); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestSimpleImputer_FailedRefitLeavesUnfitted(t *testing.T) {
	imp := NewSimpleImputer()
	if err := imp.Fit(mat.NewDense(2, 1, []float64{1, 3})); err != nil {
		t.Fatal(err)
	}
	imp.strategy = "mode"
	if err := imp.Fit(mat.NewDense(2, 1, []float64{1, 3})); err == nil {
		t.Fatal("expected ValidationError on refit")
	}
	if imp.IsFitted() {
		t.Error("failed refit should leave the imputer unfitted")
	}
	var nf *errors.NotFittedError
	if _, err := imp.Transform(mat.NewDense(1, 1, []float64{2})); !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
}
