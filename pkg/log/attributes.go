// 構造化ログで使う属性キーの定義。
//
// キーは "model.name" や "data.samples" のようにドット区切りで分類する。
// 同じ事象には必ず同じキーを使うこと。ログを jq などで絞り込むときの前提になる。

package log

// Estimator context
const (
	// ModelNameKey identifies the estimator or transformer type.
	// Examples: "LogisticRegression", "StandardScaler", "ColumnTransformer"
	ModelNameKey = "model.name"

	// OperationKey specifies the estimator method being run.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or subsystem emitting the line.
	// Examples: "benchmark", "linear_model.logistic", "multioutput"
	ComponentKey = "ml.component"
)

// Data shape
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	TargetsKey  = "data.targets"

	// TargetKey names the label column a line refers to.
	// Examples: "h1n1_vaccine", "seasonal_vaccine"
	TargetKey = "data.target"

	// FeatureKey names a single survey question.
	FeatureKey = "data.feature"

	// LevelsKey counts the distinct answers of a feature.
	LevelsKey = "data.levels"

	// TableKey names the table being loaded or checked.
	// Examples: "training_features", "submission_format"
	TableKey = "data.table"

	// PathKey is the file a table or plot was read from or written to.
	PathKey = "io.path"
)

// Training and evaluation
const (
	// DurationMsKey is the wall time of a step in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey is the number of optimiser iterations actually run.
	IterationKey = "training.iteration"

	// LossKey is the objective value at the end of fitting.
	LossKey = "metrics.loss"

	// ROCAUCKey is the area under the ROC curve on the evaluation split.
	ROCAUCKey = "metrics.roc_auc"

	// PositiveRateKey is the share of respondents with label 1.
	PositiveRateKey = "metrics.positive_rate"

	// PhiKey is the phi coefficient between the two targets.
	PhiKey = "metrics.phi"

	// PredsKey counts the predictions written.
	PredsKey = "preds.count"

	// RegularizationKey is the inverse regularisation strength C.
	RegularizationKey = "hyperparams.regularization"

	// RandomSeedKey is the seed of the stratified split.
	RandomSeedKey = "config.random_seed"
)

// Run context
const (
	// RunIDKey identifies one benchmark run. Every line of a run carries the same value.
	RunIDKey = "run.id"

	// ModeKey is the command being run: "eda", "evaluate" or "run".
	ModeKey = "run.mode"

	// StepKey names the runner step being executed.
	// Examples: "load", "explore", "split", "evaluate", "refit", "submit"
	StepKey = "run.step"

	// TrainRowsKey and EvalRowsKey are the sizes of the two sides of the split.
	TrainRowsKey = "split.train_rows"
	EvalRowsKey  = "split.eval_rows"
)

// Error context
const (
	// ErrorCodeKey carries one of the Error* codes below.
	ErrorCodeKey = "error.code"
)

// Standard values for OperationKey.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationPredictProba = "predict_proba"
	OperationTransform    = "transform"
)

// Standard values for ErrorCodeKey.
const (
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorKeyMismatch       = "KEY_MISMATCH"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorInvalidInput      = "INVALID_INPUT"
)
