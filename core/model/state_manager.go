// Package model holds what every estimator in flushot shares: the
// Transformer and Classifier interfaces, fitted-state bookkeeping and the
// JSON weight format.
package model

import (
	"sync"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// StateManager tracks whether an estimator is fitted and the input shape it
// was fitted on. Estimators hold one by composition.
//
// Fit calls Reset first and MarkFitted last, so a Fit that fails halfway
// leaves the estimator unfitted rather than half-updated.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nFeatures int
	nSamples  int
}

func NewStateManager() *StateManager {
	return &StateManager{}
}

// Reset marks the estimator unfitted.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted, s.nFeatures, s.nSamples = false, 0, 0
}

// MarkFitted records the training shape. nSamples is 0 for estimators
// restored from weights.
func (s *StateManager) MarkFitted(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted, s.nFeatures, s.nSamples = true, nFeatures, nSamples
}

func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// NFeatures is the column count seen by the last successful Fit.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures
}

// NSamples is the row count seen by the last successful Fit.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// RequireFitted returns a NotFittedError for modelName.method if Fit has not
// completed.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if s.IsFitted() {
		return nil
	}
	return errors.NewNotFittedError(modelName, method)
}

// RequireFeatures checks X against the fitted column count.
func (s *StateManager) RequireFeatures(op string, X interface{ Dims() (int, int) }) error {
	_, c := X.Dims()
	if want := s.NFeatures(); c != want {
		return errors.NewDimensionError(op, want, c, 1)
	}
	return nil
}
