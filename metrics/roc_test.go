package metrics

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

func vec(v ...float64) *mat.VecDense { return mat.NewVecDense(len(v), v) }

func TestAUC_Ties(t *testing.T) {
	// One tie between a positive and a negative counts as half a correct pair.
	got, err := AUC(vec(0, 1, 0, 1), vec(0.1, 0.5, 0.5, 0.9))
	if err != nil {
		t.Fatal(err)
	}
	if want := 0.875; math.Abs(got-want) > 1e-12 {
		t.Errorf("AUC = %v, want %v", got, want)
	}
}

func TestAUC_RandomScoresNearHalf(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	n := 20000
	yTrue, yScore := make([]float64, n), make([]float64, n)
	for i := range yTrue {
		if rng.Float64() < 0.3 {
			yTrue[i] = 1
		}
		yScore[i] = rng.Float64()
	}
	got, err := AUC(vec(yTrue...), vec(yScore...))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.5) > 0.02 {
		t.Errorf("random scores gave AUC %v, expected about 0.5", got)
	}
}

func TestAUC_SingleClassWarns(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(func(error) {})

	got, err := AUC(vec(1, 1), vec(0.2, 0.8))
	if err != nil || got != 0.5 {
		t.Fatalf("AUC = %v, %v", got, err)
	}
	var uw *errors.UndefinedMetricWarning
	if len(warned) != 1 || !errors.As(warned[0], &uw) {
		t.Errorf("expected one UndefinedMetricWarning, got %v", warned)
	}
}

func TestAUC_RejectsNaNScores(t *testing.T) {
	if _, err := AUC(vec(0, 1), vec(0.2, math.NaN())); err == nil {
		t.Error("expected error for NaN score")
	}
}

func TestROCCurve(t *testing.T) {
	fpr, tpr, thr, err := ROCCurve(vec(0, 0, 1, 1), vec(0.1, 0.4, 0.35, 0.8))
	if err != nil {
		t.Fatal(err)
	}

	wantFPR := []float64{0, 0, 0.5, 0.5, 1}
	wantTPR := []float64{0, 0.5, 0.5, 1, 1}
	wantThr := []float64{math.Inf(1), 0.8, 0.4, 0.35, 0.1}
	for i := range wantFPR {
		if fpr[i] != wantFPR[i] || tpr[i] != wantTPR[i] || thr[i] != wantThr[i] {
			t.Fatalf("point %d = (%v, %v, %v), want (%v, %v, %v)",
				i, fpr[i], tpr[i], thr[i], wantFPR[i], wantTPR[i], wantThr[i])
		}
	}

	// Trapezoidal area under the curve equals the rank AUC.
	area := 0.0
	for i := 1; i < len(fpr); i++ {
		area += (fpr[i] - fpr[i-1]) * (tpr[i] + tpr[i-1]) / 2
	}
	if math.Abs(area-0.75) > 1e-12 {
		t.Errorf("area = %v, want 0.75", area)
	}
}

func TestROCCurve_TiesCollapse(t *testing.T) {
	fpr, tpr, thr, err := ROCCurve(vec(0, 1, 0, 1), vec(0.5, 0.5, 0.5, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if len(thr) != 2 || fpr[1] != 1 || tpr[1] != 1 {
		t.Errorf("tied scores should give a single step, got fpr=%v tpr=%v thr=%v", fpr, tpr, thr)
	}
}

func TestROCAUCScore(t *testing.T) {
	Y := mat.NewDense(4, 2, []float64{
		0, 1,
		0, 0,
		1, 1,
		1, 0,
	})
	S := mat.NewDense(4, 2, []float64{
		0.1, 0.9,
		0.4, 0.1,
		0.35, 0.8,
		0.8, 0.2,
	})

	tests := []struct {
		name    string
		average Average
		want    []float64
	}{
		{"none", None, []float64{0.75, 1}},
		{"macro", Macro, []float64{0.875}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ROCAUCScore(Y, S, tt.average)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	macro, err := MacroROCAUC(Y, S)
	if err != nil || math.Abs(macro-0.875) > 1e-12 {
		t.Errorf("MacroROCAUC = %v, %v", macro, err)
	}
}

func TestROCAUCScore_Errors(t *testing.T) {
	Y := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	tests := []struct {
		name    string
		S       mat.Matrix
		average Average
	}{
		{"column mismatch", mat.NewDense(2, 1, []float64{0.1, 0.2}), Macro},
		{"row mismatch", mat.NewDense(3, 2, nil), Macro},
		{"unknown average", mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4}), "weighted"},
		{"nil scores", nil, Macro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ROCAUCScore(Y, tt.S, tt.average); err == nil {
				t.Error("expected error")
			}
		})
	}
}
