package linear_model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/pkg/errors"
	"github.com/YuminosukeSato/flushot/pkg/log"
)

// LogisticRegression implements binary logistic regression.
// Compatible with scikit-learn's LogisticRegression(penalty="l2", solver="lbfgs").
//
// The fitted parameters minimise
//
//	0.5·‖w‖² + C·Σ log(1 + exp(-s_i·(w·x_i + b)))
//
// where s_i ∈ {-1, +1}. The intercept b is not penalised. Optimisation starts
// from zero, so the same data always gives the same weights.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2" or "none"
	C            float64 // Inverse regularization strength
	fitIntercept bool    // Whether to fit intercept
	maxIter      int     // Maximum L-BFGS iterations
	tol          float64 // Gradient infinity-norm stopping threshold

	// Model parameters
	coef_      []float64
	intercept_ float64
	classes_   []int
	nIter_     int
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
	}

	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type ("l2" or "none")
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

func (lr *LogisticRegression) validateParams() error {
	if lr.penalty != "l2" && lr.penalty != "none" {
		return errors.NewValidationError("penalty", "must be l2 or none", lr.penalty)
	}
	if !(lr.C > 0) {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if lr.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", lr.maxIter)
	}
	if !(lr.tol > 0) {
		return errors.NewValidationError("tol", "must be positive", lr.tol)
	}
	return nil
}

// Fit trains the logistic regression model. y must be a single column holding
// exactly two distinct class labels.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LogisticRegression.Fit")
	lr.state.Reset()

	if err := lr.validateParams(); err != nil {
		return err
	}

	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	if err := errors.CheckMatrix("LogisticRegression.Fit", X); err != nil {
		return err
	}

	classes, err := extractClasses(y)
	if err != nil {
		return err
	}

	// s_i ∈ {-1, +1}
	signs := make([]float64, nSamples)
	for i := range signs {
		signs[i] = -1
		if int(y.At(i, 0)) == classes[1] {
			signs[i] = 1
		}
	}

	Xd := mat.DenseCopyOf(X)
	w, iters, loss, err := lr.minimize(Xd, signs)
	if err != nil {
		return err
	}

	lr.classes_ = classes
	lr.coef_ = w[:nFeatures]
	lr.intercept_ = 0
	if lr.fitIntercept {
		lr.intercept_ = w[nFeatures]
	}
	lr.nIter_ = iters

	lr.state.MarkFitted(nFeatures, nSamples)

	log.GetLoggerWithName("linear_model.logistic").Debug("LogisticRegression fitted",
		log.ModelNameKey, "LogisticRegression",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, iters,
		log.LossKey, loss,
		log.RegularizationKey, lr.C,
	)
	return nil
}

// extractClasses returns the two sorted class labels of y.
func extractClasses(y mat.Matrix) ([]int, error) {
	rows, _ := y.Dims()
	seen := make(map[int]bool)
	var classes []int
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) {
			return nil, errors.NewValueError("LogisticRegression.Fit", fmt.Sprintf("label %v is not an integer class", v))
		}
		label := int(v)
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}
	if len(classes) != 2 {
		return nil, errors.NewValueError("LogisticRegression.Fit",
			fmt.Sprintf("binary classification needs exactly 2 classes, got %d", len(classes)))
	}
	if classes[0] > classes[1] {
		classes[0], classes[1] = classes[1], classes[0]
	}
	return classes, nil
}

// minimize runs L-BFGS on the penalised log-loss and returns the weight
// vector (coefficients followed by the intercept when fitted), the number of
// iterations and the final objective.
func (lr *LogisticRegression) minimize(X *mat.Dense, signs []float64) ([]float64, int, float64, error) {
	nSamples, nFeatures := X.Dims()
	dim := nFeatures
	if lr.fitIntercept {
		dim++
	}

	alpha := 1.0
	if lr.penalty == "none" {
		alpha = 0
	}

	z := make([]float64, nSamples)
	linear := func(w []float64) {
		zv := mat.NewVecDense(nSamples, z)
		zv.MulVec(X, mat.NewVecDense(nFeatures, w[:nFeatures]))
		if lr.fitIntercept {
			floats.AddConst(w[nFeatures], z)
		}
	}

	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			linear(w)
			loss := 0.0
			for i, zi := range z {
				loss += errors.Softplus(-signs[i] * zi)
			}
			reg := 0.0
			for _, wj := range w[:nFeatures] {
				reg += wj * wj
			}
			return 0.5*alpha*reg + lr.C*loss
		},
		Grad: func(grad, w []float64) {
			linear(w)
			// d/dz_i = -s_i·σ(-s_i·z_i), scaled by C
			dz := make([]float64, nSamples)
			for i, zi := range z {
				dz[i] = -lr.C * signs[i] * errors.Sigmoid(-signs[i]*zi)
			}
			g := mat.NewVecDense(nFeatures, grad[:nFeatures])
			g.MulVec(X.T(), mat.NewVecDense(nSamples, dz))
			for j := 0; j < nFeatures; j++ {
				grad[j] += alpha * w[j]
			}
			if lr.fitIntercept {
				grad[nFeatures] = floats.Sum(dz)
			}
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: lr.tol,
		MajorIterations:   lr.maxIter,
	}

	result, err := optimize.Minimize(problem, make([]float64, dim), settings, &optimize.LBFGS{})
	if result == nil {
		return nil, 0, 0, errors.Wrap(err, "lbfgs")
	}
	iters := result.Stats.MajorIterations
	if stabErr := errors.CheckNumericalStability("LogisticRegression.lbfgs", result.X, iters); stabErr != nil {
		return nil, iters, 0, stabErr
	}
	if stabErr := errors.CheckScalar("LogisticRegression.loss", result.F, iters); stabErr != nil {
		return nil, iters, 0, stabErr
	}

	switch {
	case err != nil:
		// The line search can stall once the loss is flat to machine precision.
		errors.Warn(errors.NewConvergenceWarning("lbfgs", iters, err.Error()))
	case result.Status == optimize.IterationLimit:
		errors.Warn(errors.NewConvergenceWarning("lbfgs", iters,
			"iteration limit reached, increase max_iter or scale the data"))
	}

	return append([]float64(nil), result.X...), iters, result.F, nil
}

// DecisionFunction returns w·x + b for every row of X as an n×1 matrix.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "DecisionFunction"); err != nil {
		return nil, err
	}
	if err := lr.state.RequireFeatures("LogisticRegression.DecisionFunction", X); err != nil {
		return nil, err
	}

	nSamples, nFeatures := X.Dims()
	scores := mat.NewVecDense(nSamples, nil)
	scores.MulVec(X, mat.NewVecDense(nFeatures, lr.coef_))
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		out.Set(i, 0, scores.AtVec(i)+lr.intercept_)
	}
	return out, nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		label := lr.classes_[0]
		if scores.At(i, 0) > 0 {
			label = lr.classes_[1]
		}
		predictions.Set(i, 0, float64(label))
	}
	return predictions, nil
}

// PredictProba returns an n×2 matrix with P(classes[0]) and P(classes[1]).
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p1 := errors.Sigmoid(scores.At(i, 0))
		probas.Set(i, 0, 1-p1)
		probas.Set(i, 1, p1)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := X.Dims()
	if r, _ := y.Dims(); r != nSamples {
		return 0, errors.NewDimensionError("LogisticRegression.Score", nSamples, r, 0)
	}

	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the sorted class labels seen during Fit.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.classes_...)
}

// Coef returns a copy of the fitted coefficients.
func (lr *LogisticRegression) Coef() []float64 {
	return append([]float64(nil), lr.coef_...)
}

// Intercept returns the fitted intercept.
func (lr *LogisticRegression) Intercept() float64 { return lr.intercept_ }

// NIter returns the number of L-BFGS iterations used by the last Fit.
func (lr *LogisticRegression) NIter() int { return lr.nIter_ }

// IsFitted reports whether the model has been fitted.
func (lr *LogisticRegression) IsFitted() bool { return lr.state.IsFitted() }

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.Classifier {
	return NewLogisticRegression(
		WithLRPenalty(lr.penalty),
		WithLRC(lr.C),
		WithLogisticFitIntercept(lr.fitIntercept),
		WithLRMaxIter(lr.maxIter),
		WithLRTol(lr.tol),
	)
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"solver":        "lbfgs",
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets the model hyperparameters
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "penalty":
			lr.penalty, ok = value.(string)
		case "C":
			lr.C, ok = toFloat(value)
		case "fit_intercept":
			lr.fitIntercept, ok = value.(bool)
		case "max_iter":
			var f float64
			f, ok = toFloat(value)
			lr.maxIter = int(f)
		case "tol":
			lr.tol, ok = toFloat(value)
		case "solver":
			ok = value == "lbfgs"
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
		if !ok {
			return errors.NewValidationError(key, "invalid type or value", value)
		}
	}
	return lr.validateParams()
}

// toFloat accepts the numeric types produced by Go literals and JSON decoding.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// ExportWeights returns the fitted parameters in a serialisable form.
func (lr *LogisticRegression) ExportWeights() (*model.ModelWeights, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "ExportWeights"); err != nil {
		return nil, err
	}
	return &model.ModelWeights{
		ModelType:       "LogisticRegression",
		Version:         model.WeightsVersion,
		Coefficients:    lr.Coef(),
		Intercept:       lr.intercept_,
		Classes:         lr.Classes(),
		Hyperparameters: lr.GetParams(),
		Metadata:        map[string]interface{}{"n_iter": lr.nIter_},
		IsFitted:        true,
	}, nil
}

// ImportWeights restores a model exported by ExportWeights. Predictions of the
// restored model are bit-identical to the original.
func (lr *LogisticRegression) ImportWeights(w *model.ModelWeights) error {
	if w == nil {
		return errors.NewValueError("LogisticRegression.ImportWeights", "weights are nil")
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != "LogisticRegression" {
		return errors.NewValidationError("model_type", "expected LogisticRegression", w.ModelType)
	}
	if !w.IsFitted {
		return errors.NewValidationError("is_fitted", "cannot import an unfitted model", false)
	}
	if len(w.Classes) != 2 {
		return errors.NewValidationError("classes", "binary model needs 2 classes", w.Classes)
	}
	if w.Hyperparameters != nil {
		params := make(map[string]interface{}, len(w.Hyperparameters))
		for k, v := range w.Hyperparameters {
			params[k] = v
		}
		if err := lr.SetParams(params); err != nil {
			return err
		}
	}

	lr.coef_ = append([]float64(nil), w.Coefficients...)
	lr.intercept_ = w.Intercept
	lr.classes_ = append([]int(nil), w.Classes...)
	lr.nIter_ = 0
	lr.state.MarkFitted(len(lr.coef_), 0)
	return nil
}

func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(penalty=%s, C=%g, max_iter=%d)", lr.penalty, lr.C, lr.maxIter)
}
