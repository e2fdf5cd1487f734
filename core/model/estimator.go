package model

import "gonum.org/v1/gonum/mat"

// Transformer learns column statistics in Fit and applies them in Transform.
// StandardScaler, SimpleImputer, ColumnTransformer and step-only Pipelines
// satisfy it, so they nest freely.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	// FitTransform は Fit の後に同じ X を Transform したものと等しい
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is a single-target probabilistic classifier, such as
// LogisticRegression. y is an n_samples × 1 column of class labels.
type Classifier interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)

	// PredictProba returns n_samples × n_classes; column j is Classes()[j].
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the sorted class labels seen during Fit.
	Classes() []int

	// Clone returns an unfitted copy with the same hyperparameters.
	Clone() Classifier
}

// MultiOutputClassifier fits one classifier per column of Y.
type MultiOutputClassifier interface {
	// Fit trains on X (n_samples × n_features) and Y (n_samples × n_targets).
	Fit(X, Y mat.Matrix) error

	// PredictProba returns one n_samples × n_classes matrix per target.
	PredictProba(X mat.Matrix) ([]mat.Matrix, error)
}
