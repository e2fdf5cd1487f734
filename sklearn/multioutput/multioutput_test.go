package multioutput

import (
	"math"
	"testing"

	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
	"github.com/YuminosukeSato/flushot/sklearn/linear_model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// twoTargets builds targets that depend on different features, so a model
// that mixed them up would score badly.
func twoTargets(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	Y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		a := float64(i%5) - 2
		b := math.Cos(float64(i))
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		if a+0.3*math.Sin(float64(3*i)) > 0 {
			Y.Set(i, 0, 1)
		}
		if b > 0.1 {
			Y.Set(i, 1, 1)
		}
	}
	return X, Y
}

func TestMultiOutputClassifier_FitPredictProba(t *testing.T) {
	X, Y := twoTargets(120)
	clf := NewMultiOutputClassifier(linear_model.NewLogisticRegression())

	if err := clf.Fit(X, Y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if n := len(clf.Estimators()); n != 2 {
		t.Fatalf("expected 2 estimators, got %d", n)
	}

	probas, err := clf.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	if len(probas) != 2 {
		t.Fatalf("expected 2 probability matrices, got %d", len(probas))
	}
	for k, p := range probas {
		r, c := p.Dims()
		if r != 120 || c != 2 {
			t.Fatalf("target %d: shape (%d, %d)", k, r, c)
		}
		for i := 0; i < r; i++ {
			if s := p.At(i, 0) + p.At(i, 1); math.Abs(s-1) > 1e-12 {
				t.Fatalf("target %d row %d sums to %v", k, i, s)
			}
		}
	}

	pos, err := clf.PositiveProba(X)
	if err != nil {
		t.Fatal(err)
	}
	if pos.At(7, 1) != probas[1].At(7, 1) {
		t.Error("PositiveProba must take column 1 of each target")
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 2; k++ {
		correct := 0
		for i := 0; i < 120; i++ {
			if pred.At(i, k) == Y.At(i, k) {
				correct++
			}
		}
		if acc := float64(correct) / 120; acc < 0.8 {
			t.Errorf("target %d accuracy %v too low", k, acc)
		}
	}
}

func TestMultiOutputClassifier_MatchesIndependentFits(t *testing.T) {
	X, Y := twoTargets(90)
	clf := NewMultiOutputClassifier(linear_model.NewLogisticRegression())
	if err := clf.Fit(X, Y); err != nil {
		t.Fatal(err)
	}

	for k := 0; k < 2; k++ {
		single := linear_model.NewLogisticRegression()
		y := mat.NewDense(90, 1, mat.Col(nil, k, Y))
		if err := single.Fit(X, y); err != nil {
			t.Fatal(err)
		}
		want, _ := single.PredictProba(X)
		got, _ := clf.Estimators()[k].PredictProba(X)
		if !mat.Equal(want, got) {
			t.Errorf("target %d differs from a sequential fit", k)
		}
	}
}

func TestMultiOutputClassifier_Errors(t *testing.T) {
	X, Y := twoTargets(10)
	clf := NewMultiOutputClassifier(linear_model.NewLogisticRegression())

	var nf *errors.NotFittedError
	if _, err := clf.PredictProba(X); !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
	if err := clf.Fit(X, mat.NewDense(9, 2, nil)); err == nil {
		t.Error("expected row mismatch error")
	}

	// Second target has a single class.
	bad := mat.DenseCopyOf(Y)
	for i := 0; i < 10; i++ {
		bad.Set(i, 1, 1)
	}
	err := clf.Fit(X, bad)
	var verr *errors.ValueError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValueError from the single-class target, got %v", err)
	}
	if clf.IsFitted() {
		t.Error("failed Fit must not mark the model fitted")
	}
}
