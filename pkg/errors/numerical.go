package errors

import "math"

// maxReported bounds NumericalInstabilityError.Values.
const maxReported = 10

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// CheckNumericalStability returns a NumericalInstabilityError holding values
// if any of them is NaN or Inf. L-BFGS results are checked with it.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if !finite(v) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar is CheckNumericalStability for one value, e.g. a loss.
func CheckScalar(operation string, value float64, iteration int) error {
	if finite(value) {
		return nil
	}
	return NewNumericalInstabilityError(operation, []float64{value}, iteration)
}

// CheckMatrix reports the non-finite cells of a matrix in row-major order.
// LogisticRegression rejects inputs that still hold NaN with it.
func CheckMatrix(operation string, m interface {
	At(int, int) float64
	Dims() (int, int)
}) error {
	rows, cols := m.Dims()
	var bad []float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); !finite(v) {
				bad = append(bad, v)
				if len(bad) == maxReported {
					return NewNumericalInstabilityError(operation, bad, 0)
				}
			}
		}
	}
	if bad != nil {
		return NewNumericalInstabilityError(operation, bad, 0)
	}
	return nil
}

// ClipValue clamps value to [lo, hi].
func ClipValue(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(value, hi))
}

// Softplus computes log(1 + exp(x)) without overflow.
func Softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// Sigmoid computes 1 / (1 + exp(-x)) without overflow.
func Sigmoid(x float64) float64 {
	if x < 0 {
		e := math.Exp(x)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(-x))
}
