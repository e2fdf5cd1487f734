// Package pipeline chains transformers with an optional final estimator.
package pipeline

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Step is a named transformer stage.
type Step struct {
	Name        string
	Transformer model.Transformer
}

// Pipeline fit-transforms X through its steps in order. When it has a final
// estimator the transformed matrix is handed to it; a pipeline without one is
// itself a model.Transformer and can be nested inside a ColumnTransformer.
type Pipeline struct {
	state *model.StateManager

	steps     []Step
	final     model.MultiOutputClassifier
	finalName string
}

// New creates a transformer-only pipeline.
//
//	numeric := pipeline.New(
//	    pipeline.Step{Name: "standard_scaler", Transformer: preprocessing.NewStandardScalerDefault()},
//	    pipeline.Step{Name: "simple_imputer", Transformer: impute.NewSimpleImputer()},
//	)
func New(steps ...Step) *Pipeline {
	return &Pipeline{state: model.NewStateManager(), steps: steps}
}

// WithEstimator returns p with a final multi-output estimator named name.
func (p *Pipeline) WithEstimator(name string, est model.MultiOutputClassifier) *Pipeline {
	p.final = est
	p.finalName = name
	return p
}

// Steps returns the transformer steps.
func (p *Pipeline) Steps() []Step { return p.steps }

// Estimator returns the final estimator, or nil.
func (p *Pipeline) Estimator() model.MultiOutputClassifier { return p.final }

// Fit fit-transforms X through every step and fits the final estimator on the
// result and Y.
func (p *Pipeline) Fit(X, Y mat.Matrix) error {
	if p.final == nil {
		return errors.NewValueError("Pipeline.Fit", "pipeline has no final estimator, use FitTransform")
	}
	p.state.Reset()
	Xt, err := p.fitSteps(X)
	if err != nil {
		return err
	}
	if err := p.final.Fit(Xt, Y); err != nil {
		return errors.Wrapf(err, "fit step %s", p.finalName)
	}
	p.state.MarkFitted(featuresOf(X))
	return nil
}

// FitTransform fit-transforms X through every step.
func (p *Pipeline) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	p.state.Reset()
	Xt, err := p.fitSteps(X)
	if err != nil {
		return nil, err
	}
	p.state.MarkFitted(featuresOf(X))
	return Xt, nil
}

// featuresOf returns (columns, rows), the argument order of MarkFitted.
func featuresOf(X mat.Matrix) (int, int) {
	r, c := X.Dims()
	return c, r
}

func (p *Pipeline) fitSteps(X mat.Matrix) (mat.Matrix, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Pipeline.Fit", "empty data", errors.ErrEmptyData)
	}
	Xt := X
	for _, step := range p.steps {
		out, err := step.Transformer.FitTransform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "fit step %s", step.Name)
		}
		Xt = out
	}
	return Xt, nil
}

// Transform applies every fitted step to X.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state.RequireFitted("Pipeline", "Transform"); err != nil {
		return nil, err
	}
	if err := p.state.RequireFeatures("Pipeline.Transform", X); err != nil {
		return nil, err
	}
	Xt := X
	for _, step := range p.steps {
		out, err := step.Transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "transform step %s", step.Name)
		}
		Xt = out
	}
	return Xt, nil
}

// PredictProba transforms X and returns the final estimator's per-target probabilities.
func (p *Pipeline) PredictProba(X mat.Matrix) ([]mat.Matrix, error) {
	if p.final == nil {
		return nil, errors.NewValueError("Pipeline.PredictProba", "pipeline has no final estimator")
	}
	Xt, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.final.PredictProba(Xt)
}

func (p *Pipeline) String() string {
	names := make([]string, 0, len(p.steps)+1)
	for _, s := range p.steps {
		names = append(names, s.Name)
	}
	if p.final != nil {
		names = append(names, p.finalName)
	}
	return fmt.Sprintf("Pipeline(steps=[%s])", strings.Join(names, ", "))
}

// Transformer adapts a transformer-only Pipeline to model.Transformer.
type Transformer struct{ *Pipeline }

// Fit fits every step on X.
func (t Transformer) Fit(X mat.Matrix) error {
	_, err := t.FitTransform(X)
	return err
}

// AsTransformer returns p as a model.Transformer.
func (p *Pipeline) AsTransformer() model.Transformer { return Transformer{p} }
