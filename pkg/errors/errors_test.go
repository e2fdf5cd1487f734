package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not fitted",
			err:  NewNotFittedError("StandardScaler", "Transform"),
			want: "flushot: StandardScaler: this model is not fitted yet. Call Fit() before using Transform()",
		},
		{
			name: "rows",
			err:  NewDimensionError("MultiOutputClassifier.Fit", 240, 239, 0),
			want: "flushot: MultiOutputClassifier.Fit: dimension mismatch on axis 0 (rows). Expected 240, got 239",
		},
		{
			name: "features",
			err:  NewDimensionError("LogisticRegression.PredictProba", 23, 3, 1),
			want: "flushot: LogisticRegression.PredictProba: dimension mismatch on axis 1 (features). Expected 23, got 3",
		},
		{
			name: "validation",
			err:  NewValidationError("split.test_size", "must be in (0, 1)", 1.5),
			want: "flushot: validation failed for parameter 'split.test_size': must be in (0, 1) (got: 1.5)",
		},
		{
			name: "value",
			err:  NewValueError("LogisticRegression.Fit", "binary classification needs exactly 2 classes, got 1"),
			want: "flushot: LogisticRegression.Fit: binary classification needs exactly 2 classes, got 1",
		},
		{
			name: "model with cause",
			err:  NewModelError("SimpleImputer.Fit", "empty data", ErrEmptyData),
			want: "flushot: SimpleImputer.Fit: empty data: empty data",
		},
		{
			name: "model without cause",
			err:  NewModelError("Pipeline.Fit", "no steps", nil),
			want: "flushot: Pipeline.Fit: no steps",
		},
		{
			name: "instability truncated",
			err:  NewNumericalInstabilityError("lbfgs", []float64{1, 2, 3, 4, 5, 6}, 7),
			want: "flushot: numerical instability detected in lbfgs at iteration 7. Values: [1, 2, 3, 4, 5, ...]",
		},
		{
			name: "keys differ",
			err:  NewKeyMismatchError("training_features", "training_labels", []int64{0, 1, 2}, []int64{0, 5, 2}, 1),
			want: "flushot: row keys of training_features and training_labels differ at position 1: 1 vs 5",
		},
		{
			name: "lengths differ",
			err:  NewKeyMismatchError("test_features", "submission_format", []int64{0, 1, 2}, []int64{0, 1}, 2),
			want: "flushot: row keys of test_features and submission_format differ in length: 3 vs 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q\nwant      %q", got, tt.want)
			}
			// スタックトレースは生成箇所（このテストファイル）を指す
			if !strings.Contains(fmt.Sprintf("%+v", tt.err), "errors_test.go") {
				t.Error("expected a stack trace pointing at the caller")
			}
		})
	}
}

func TestAs_FindsTypesThroughWrapping(t *testing.T) {
	err := Wrapf(NewKeyMismatchError("a", "b", []int64{1}, []int64{2}, 0), "step %s", "load")

	var km *KeyMismatchError
	if !As(err, &km) {
		t.Fatalf("As(*KeyMismatchError) failed on %v", err)
	}
	if km.LeftKey != 1 || km.RightKey != 2 {
		t.Errorf("keys = %d, %d", km.LeftKey, km.RightKey)
	}

	var dim *DimensionError
	if As(err, &dim) {
		t.Error("unexpected DimensionError")
	}
}

func TestKeyMismatch_IndexOutOfRange(t *testing.T) {
	err := NewKeyMismatchError("a", "b", []int64{4, 5}, []int64{4, 5, 6}, 2)
	var km *KeyMismatchError
	if !As(err, &km) {
		t.Fatal("expected *KeyMismatchError")
	}
	if km.LeftKey != 0 || km.RightKey != 6 {
		t.Errorf("LeftKey=%d RightKey=%d, want 0 and 6", km.LeftKey, km.RightKey)
	}
}

func TestIs_SentinelThroughModelError(t *testing.T) {
	err := Wrap(NewModelError("StandardScaler.Fit", "empty data", ErrEmptyData), "fit step scaler")
	if !Is(err, ErrEmptyData) {
		t.Error("ErrEmptyData should be found through ModelError")
	}
	if Is(err, New("singular matrix")) {
		t.Error("unrelated sentinel should not match")
	}
	if Wrap(nil, "nothing") != nil {
		t.Error("wrapping nil should stay nil")
	}
}

func TestMarshalZerologObject(t *testing.T) {
	tests := []struct {
		name   string
		obj    zerolog.LogObjectMarshaler
		fields map[string]interface{}
	}{
		{
			name:   "key mismatch",
			obj:    &KeyMismatchError{Left: "training_features", Right: "training_labels", LeftLen: 3, RightLen: 3, Index: 1, LeftKey: 1, RightKey: 7},
			fields: map[string]interface{}{"type": "KeyMismatchError", "index": 1.0, "right_key": 7.0},
		},
		{
			name:   "dimension",
			obj:    &DimensionError{Op: "Predict", Expected: 23, Got: 3, Axis: 1},
			fields: map[string]interface{}{"type": "DimensionError", "axis_name": "features", "got": 3.0},
		},
		{
			name:   "convergence",
			obj:    NewConvergenceWarning("lbfgs", 100, "iteration limit reached"),
			fields: map[string]interface{}{"type": "ConvergenceWarning", "algorithm": "lbfgs", "iterations": 100.0},
		},
		{
			name:   "undefined metric",
			obj:    NewUndefinedMetricWarning("roc_auc", "only one class present in y_true", 0.5),
			fields: map[string]interface{}{"type": "UndefinedMetricWarning", "metric": "roc_auc", "result": 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := zerolog.New(&buf)
			l.Info().EmbedObject(tt.obj).Msg("x")
			var line map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("invalid JSON %q: %v", buf.String(), err)
			}
			for k, want := range tt.fields {
				if line[k] != want {
					t.Errorf("%s = %v, want %v", k, line[k], want)
				}
			}
		})
	}
}
