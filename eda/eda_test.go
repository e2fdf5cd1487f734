package eda

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/metrics"
)

var nan = math.NaN()

func TestValueCounts(t *testing.T) {
	values := []float64{0, 1, 0, 0, nan, 1, 2}

	got := ValueCounts(values, false)
	want := []Count{{0, 3}, {1, 2}, {2, 1}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}

	norm := ValueCounts(values, true)
	if math.Abs(norm[0].Frequency-0.5) > 1e-12 {
		t.Errorf("normalised share of 0 = %v, want 0.5", norm[0].Frequency)
	}
}

func TestCrosstab(t *testing.T) {
	h1n1 := []float64{0, 0, 1, 1, 0, nan}
	seasonal := []float64{0, 1, 1, 1, 0, 1}

	tab, err := Crosstab(h1n1, seasonal, false)
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(2, 2, []float64{2, 1, 0, 2})
	if !mat.Equal(tab.Counts, want) {
		t.Errorf("counts =\n%v", mat.Formatted(tab.Counts))
	}

	norm, err := Crosstab(h1n1, seasonal, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := mat.Sum(norm.Counts); math.Abs(got-1) > 1e-12 {
		t.Errorf("normalised table sums to %v", got)
	}
	if got := norm.Counts.At(0, 0); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("share of (0,0) = %v, want 0.4", got)
	}

	if _, err := Crosstab([]float64{0}, []float64{0, 1}, false); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestPhiCoefficient(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{0, 1, 0, 1}, []float64{0, 1, 0, 1}, 1},
		{"opposite", []float64{0, 1, 0, 1}, []float64{1, 0, 1, 0}, -1},
		{"independent", []float64{0, 0, 1, 1}, []float64{0, 1, 0, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PhiCoefficient(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("phi = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := PhiCoefficient([]float64{0, 2}, []float64{0, 1}); err == nil {
		t.Error("non-binary input should be rejected")
	}
}

func TestRateByLevel(t *testing.T) {
	levels := []string{"Male", "Female", "Female", "", "Male", "Female"}
	target := []float64{1, 0, 1, 1, 0, 1}

	rates, err := RateByLevel(levels, target)
	if err != nil {
		t.Fatal(err)
	}
	if len(rates) != 2 {
		t.Fatalf("missing level should be excluded, got %v", rates)
	}
	if rates[0].Level != "Female" || rates[0].Count != 3 || math.Abs(rates[0].Positive-2.0/3.0) > 1e-12 {
		t.Errorf("Female row = %+v", rates[0])
	}
	if rates[1].Level != "Male" || rates[1].Positive != 0.5 || rates[1].Negative != 0.5 {
		t.Errorf("Male row = %+v", rates[1])
	}
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()

	labels := [][]float64{{0, 1, 0, 0}, {1, 1, 0, 1}}
	labelPath := filepath.Join(dir, "labels.png")
	if err := PlotLabelDistribution(labelPath, []string{"h1n1_vaccine", "seasonal_vaccine"}, labels); err != nil {
		t.Fatalf("PlotLabelDistribution: %v", err)
	}

	rates, err := RateByLevel([]string{"a", "b", "a", "b"}, []float64{0, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	ratePath := filepath.Join(dir, "nested", "sex.png")
	if err := PlotRateByLevel(ratePath, "sex", "h1n1_vaccine", rates); err != nil {
		t.Fatalf("PlotRateByLevel: %v", err)
	}

	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	yScore := mat.NewVecDense(4, []float64{0.1, 0.4, 0.35, 0.8})
	fpr, tpr, _, err := metrics.ROCCurve(yTrue, yScore)
	if err != nil {
		t.Fatal(err)
	}
	rocPath := filepath.Join(dir, "roc.png")
	if err := PlotROC(rocPath, []ROC{{Name: "h1n1_vaccine", FPR: fpr, TPR: tpr, AUC: 0.75}}); err != nil {
		t.Fatalf("PlotROC: %v", err)
	}

	for _, p := range []string{labelPath, ratePath, rocPath} {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("expected a non-empty image at %s", p)
		}
	}

	if err := PlotROC(filepath.Join(dir, "none.png"), nil); err == nil {
		t.Error("expected error for no curves")
	}
	if err := PlotRateByLevel(filepath.Join(dir, "none.png"), "sex", "h1n1_vaccine", nil); err == nil {
		t.Error("expected error for no levels")
	}
}
