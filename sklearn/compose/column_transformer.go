// Package compose applies different transformers to different column subsets.
package compose

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Remainder decides what happens to columns no spec selects.
type Remainder string

const (
	// Drop discards unselected columns.
	Drop Remainder = "drop"
	// Passthrough appends unselected columns unchanged after the transformed ones.
	Passthrough Remainder = "passthrough"
)

// Spec binds a named transformer to a set of input columns.
type Spec struct {
	Name        string
	Transformer model.Transformer
	Columns     []string
}

// ColumnTransformer fits each Spec on its own column subset and hstacks the
// outputs in spec order.
type ColumnTransformer struct {
	state *model.StateManager

	inputColumns []string
	specs        []Spec
	remainder    Remainder

	resolved  [][]int
	remaining []int
}

// NewColumnTransformer creates a ColumnTransformer over inputColumns.
//
//	ct := compose.NewColumnTransformer(names, compose.Drop,
//	    compose.Spec{Name: "numeric", Transformer: numericPipeline, Columns: numericCols})
func NewColumnTransformer(inputColumns []string, remainder Remainder, specs ...Spec) *ColumnTransformer {
	return &ColumnTransformer{
		state:        model.NewStateManager(),
		inputColumns: append([]string(nil), inputColumns...),
		specs:        specs,
		remainder:    remainder,
	}
}

// Specs returns the configured specs.
func (ct *ColumnTransformer) Specs() []Spec { return ct.specs }

func (ct *ColumnTransformer) resolve() error {
	if ct.remainder != Drop && ct.remainder != Passthrough {
		return errors.NewValidationError("remainder", "must be drop or passthrough", string(ct.remainder))
	}
	if len(ct.specs) == 0 {
		return errors.NewValidationError("transformers", "at least one transformer is required", 0)
	}

	index := make(map[string]int, len(ct.inputColumns))
	for i, name := range ct.inputColumns {
		index[name] = i
	}

	used := make([]bool, len(ct.inputColumns))
	ct.resolved = make([][]int, len(ct.specs))
	for k, spec := range ct.specs {
		if spec.Transformer == nil {
			return errors.NewValidationError("transformers", "nil transformer", spec.Name)
		}
		if len(spec.Columns) == 0 {
			return errors.NewValidationError(spec.Name, "selects no columns", spec.Columns)
		}
		idx := make([]int, len(spec.Columns))
		for i, name := range spec.Columns {
			j, ok := index[name]
			if !ok {
				return errors.NewValidationError(spec.Name, "unknown column", name)
			}
			idx[i] = j
			used[j] = true
		}
		ct.resolved[k] = idx
	}

	ct.remaining = ct.remaining[:0]
	if ct.remainder == Passthrough {
		for j, u := range used {
			if !u {
				ct.remaining = append(ct.remaining, j)
			}
		}
	}
	return nil
}

// Fit resolves the column names and fits every transformer on its columns.
func (ct *ColumnTransformer) Fit(X mat.Matrix) error {
	_, err := ct.fit(X, false)
	return err
}

// FitTransform fits every transformer and returns the stacked output.
func (ct *ColumnTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	return ct.fit(X, true)
}

func (ct *ColumnTransformer) fit(X mat.Matrix, transform bool) (mat.Matrix, error) {
	// 途中で失敗した再学習を fitted と見なさない
	ct.state.Reset()
	r, c := X.Dims()
	if c != len(ct.inputColumns) {
		return nil, errors.NewDimensionError("ColumnTransformer.Fit", len(ct.inputColumns), c, 1)
	}
	if err := ct.resolve(); err != nil {
		return nil, err
	}

	outputs := make([]mat.Matrix, len(ct.specs))
	for k, spec := range ct.specs {
		sub := selectColumns(X, ct.resolved[k])
		if !transform {
			if err := spec.Transformer.Fit(sub); err != nil {
				return nil, errors.Wrapf(err, "fit transformer %s", spec.Name)
			}
			continue
		}
		out, err := spec.Transformer.FitTransform(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "fit transformer %s", spec.Name)
		}
		outputs[k] = out
	}

	ct.state.MarkFitted(c, r)
	if !transform {
		return nil, nil
	}
	return ct.stack(X, outputs), nil
}

// Transform applies the fitted transformers and hstacks the results, then
// appends the passthrough remainder.
func (ct *ColumnTransformer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := ct.state.RequireFitted("ColumnTransformer", "Transform"); err != nil {
		return nil, err
	}
	if err := ct.state.RequireFeatures("ColumnTransformer.Transform", X); err != nil {
		return nil, err
	}

	outputs := make([]mat.Matrix, len(ct.specs))
	for k, spec := range ct.specs {
		out, err := spec.Transformer.Transform(selectColumns(X, ct.resolved[k]))
		if err != nil {
			return nil, errors.Wrapf(err, "transform %s", spec.Name)
		}
		outputs[k] = out
	}
	return ct.stack(X, outputs), nil
}

// OutputWidth returns the number of columns Transform produces. Only valid after Fit.
func (ct *ColumnTransformer) OutputWidth() int {
	w := len(ct.remaining)
	for _, idx := range ct.resolved {
		w += len(idx)
	}
	return w
}

func (ct *ColumnTransformer) stack(X mat.Matrix, outputs []mat.Matrix) *mat.Dense {
	r, _ := X.Dims()
	width := len(ct.remaining)
	for _, out := range outputs {
		_, oc := out.Dims()
		width += oc
	}

	result := mat.NewDense(r, width, nil)
	offset := 0
	for _, out := range outputs {
		_, oc := out.Dims()
		result.Slice(0, r, offset, offset+oc).(*mat.Dense).Copy(out)
		offset += oc
	}
	for _, j := range ct.remaining {
		for i := 0; i < r; i++ {
			result.Set(i, offset, X.At(i, j))
		}
		offset++
	}
	return result
}

func (ct *ColumnTransformer) String() string {
	names := make([]string, len(ct.specs))
	for i, s := range ct.specs {
		names[i] = s.Name
	}
	return fmt.Sprintf("ColumnTransformer(transformers=%v, remainder=%s)", names, ct.remainder)
}

func selectColumns(X mat.Matrix, idx []int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(idx), nil)
	for k, j := range idx {
		for i := 0; i < r; i++ {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out
}
