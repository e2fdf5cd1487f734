// Package multioutput fits one independent classifier per target column.
package multioutput

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/core/parallel"
	"github.com/YuminosukeSato/flushot/pkg/errors"
	"github.com/YuminosukeSato/flushot/pkg/log"
)

// MultiOutputClassifier clones its base estimator once per column of Y.
// The per-target fits share no state and run concurrently; results are kept
// by target index, so the fitted models do not depend on scheduling.
type MultiOutputClassifier struct {
	state *model.StateManager

	base       model.Classifier
	estimators []model.Classifier
}

// NewMultiOutputClassifier wraps base. base itself is never fitted.
func NewMultiOutputClassifier(base model.Classifier) *MultiOutputClassifier {
	return &MultiOutputClassifier{
		state: model.NewStateManager(),
		base:  base,
	}
}

// Fit trains one clone of the base estimator per column of Y.
func (m *MultiOutputClassifier) Fit(X, Y mat.Matrix) error {
	m.state.Reset()
	if m.base == nil {
		return errors.NewValueError("MultiOutputClassifier.Fit", "base estimator is nil")
	}
	nSamples, nFeatures := X.Dims()
	yRows, nTargets := Y.Dims()
	if nSamples != yRows {
		return errors.NewDimensionError("MultiOutputClassifier.Fit", nSamples, yRows, 0)
	}
	if nTargets < 1 {
		return errors.NewValueError("MultiOutputClassifier.Fit", "Y must have at least one target column")
	}

	logger := log.GetLoggerWithName("multioutput")
	logger.Debug("Fitting per-target estimators",
		log.ModelNameKey, "MultiOutputClassifier",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.TargetsKey, nTargets,
	)

	estimators := make([]model.Classifier, nTargets)
	err := parallel.ForEach(nTargets, func(k int) error {
		return errors.SafeExecute(fmt.Sprintf("MultiOutputClassifier.Fit[target=%d]", k), func() error {
			y := mat.NewDense(nSamples, 1, nil)
			y.SetCol(0, mat.Col(nil, k, Y))
			est := m.base.Clone()
			if err := est.Fit(X, y); err != nil {
				return errors.Wrapf(err, "fit target %d", k)
			}
			estimators[k] = est
			return nil
		})
	})
	if err != nil {
		return err
	}

	m.estimators = estimators
	m.state.MarkFitted(nFeatures, nSamples)
	return nil
}

// PredictProba returns one n_samples × n_classes matrix per target.
func (m *MultiOutputClassifier) PredictProba(X mat.Matrix) ([]mat.Matrix, error) {
	if err := m.state.RequireFitted("MultiOutputClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := m.state.RequireFeatures("MultiOutputClassifier.PredictProba", X); err != nil {
		return nil, err
	}

	out := make([]mat.Matrix, len(m.estimators))
	for k, est := range m.estimators {
		p, err := est.PredictProba(X)
		if err != nil {
			return nil, errors.Wrapf(err, "predict target %d", k)
		}
		out[k] = p
	}
	return out, nil
}

// PositiveProba returns an n_samples × n_targets matrix holding the
// probability of the larger class label of each target.
func (m *MultiOutputClassifier) PositiveProba(X mat.Matrix) (*mat.Dense, error) {
	probas, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := X.Dims()
	out := mat.NewDense(nSamples, len(probas), nil)
	for k, p := range probas {
		_, c := p.Dims()
		out.SetCol(k, mat.Col(nil, c-1, p))
	}
	return out, nil
}

// Predict returns an n_samples × n_targets matrix of predicted labels.
func (m *MultiOutputClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MultiOutputClassifier", "Predict"); err != nil {
		return nil, err
	}
	nSamples, _ := X.Dims()
	out := mat.NewDense(nSamples, len(m.estimators), nil)
	for k, est := range m.estimators {
		pred, err := est.Predict(X)
		if err != nil {
			return nil, errors.Wrapf(err, "predict target %d", k)
		}
		out.SetCol(k, mat.Col(nil, 0, pred))
	}
	return out, nil
}

// Estimators returns the fitted per-target estimators in target order.
func (m *MultiOutputClassifier) Estimators() []model.Classifier {
	return append([]model.Classifier(nil), m.estimators...)
}

// IsFitted reports whether Fit has completed.
func (m *MultiOutputClassifier) IsFitted() bool { return m.state.IsFitted() }

func (m *MultiOutputClassifier) String() string {
	return fmt.Sprintf("MultiOutputClassifier(estimator=%v)", m.base)
}
