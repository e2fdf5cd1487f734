package model

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// WeightsVersion は書き出す重みファイルの形式バージョン。
const WeightsVersion = "1"

// ModelWeights is the serialisable form of one fitted linear classifier.
type ModelWeights struct {
	ModelType    string    `json:"model_type"`
	Version      string    `json:"version"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	// Classes は [negative, positive] の順
	Classes []int `json:"classes,omitempty"`
	// Features は係数と同じ順の列名
	Features        []string               `json:"features,omitempty"`
	Hyperparameters map[string]interface{} `json:"hyperparameters"`
	// Metadata には target 名や n_iter を入れる
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	IsFitted bool                   `json:"is_fitted"`
}

// Validate checks the fields an importer relies on.
func (mw *ModelWeights) Validate() error {
	switch {
	case mw.ModelType == "":
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	case mw.Version != WeightsVersion:
		return errors.NewValidationError("version", "unsupported weights version", mw.Version)
	case !mw.IsFitted && len(mw.Coefficients) > 0:
		return errors.NewValidationError("coefficients", "unfitted model should not have coefficients", len(mw.Coefficients))
	case mw.IsFitted && len(mw.Coefficients) == 0:
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", 0)
	case len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients):
		return errors.NewDimensionError("ModelWeights.Validate", len(mw.Coefficients), len(mw.Features), 1)
	}
	return nil
}

// Clone returns a deep copy. Map values are copied shallowly.
func (mw *ModelWeights) Clone() *ModelWeights {
	c := *mw
	c.Coefficients = append([]float64(nil), mw.Coefficients...)
	c.Classes = append([]int(nil), mw.Classes...)
	c.Features = append([]string(nil), mw.Features...)
	c.Hyperparameters = copyMap(mw.Hyperparameters)
	c.Metadata = copyMap(mw.Metadata)
	return &c
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WriteJSON writes v as indented JSON to path, creating the parent directory.
// float64 values survive a WriteJSON/ReadJSON round trip bit for bit.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode weights")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write weights %s", path)
}

// ReadJSON decodes the JSON document at path into v.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read weights %s", path)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decode weights %s", path)
}
