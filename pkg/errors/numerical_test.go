package errors

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("ok", []float64{1, -2, 0}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckNumericalStability("lbfgs", []float64{1, math.NaN()}, 3)
	var nerr *NumericalInstabilityError
	if !As(err, &nerr) || nerr.Iteration != 3 || nerr.Operation != "lbfgs" {
		t.Errorf("expected NumericalInstabilityError, got %v", err)
	}
	if CheckScalar("loss", math.Inf(1), 0) == nil {
		t.Error("Inf should be reported")
	}
}

func TestCheckMatrix(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("imputed", m); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	m.Set(1, 0, math.NaN())
	if err := CheckMatrix("imputed", m); err == nil {
		t.Error("NaN cell should be reported")
	}
}

func TestSigmoidAndSoftplus(t *testing.T) {
	tests := []struct {
		x          float64
		sig, splus float64
	}{
		{0, 0.5, math.Ln2},
		{800, 1, 800},
		{-800, 0, 0},
	}
	for _, tt := range tests {
		if got := Sigmoid(tt.x); math.Abs(got-tt.sig) > 1e-12 {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.x, got, tt.sig)
		}
		if got := Softplus(tt.x); math.Abs(got-tt.splus) > 1e-12 || math.IsInf(got, 0) {
			t.Errorf("Softplus(%v) = %v, want %v", tt.x, got, tt.splus)
		}
	}
	if got := ClipValue(2, 0, 1); got != 1 {
		t.Errorf("ClipValue = %v", got)
	}
}
