// Package flushot reproduces the flu-shot-learning benchmark in Go: predicting
// whether survey respondents received the H1N1 and seasonal flu vaccines.
//
// flushot offers a scikit-learn-like API over gonum matrices, so the
// walkthrough reads much like its Python counterpart.
//
// # Features
//
//   - scikit-learn-like API: StandardScaler, SimpleImputer, ColumnTransformer,
//     Pipeline, LogisticRegression and MultiOutputClassifier
//   - Deterministic: L-BFGS from zero and seeded stratified splits
//   - Robust Error Handling: typed errors with stack traces (cockroachdb/errors)
//   - Structured Logging: zerolog with ML-specific attribute keys
//
// # Quick Start
//
// Run the whole walkthrough from the command line:
//
//	flushot run --data-dir data --output my_submission.csv --plots plots
//
// Or from Go:
//
//	cfg := benchmark.DefaultConfig()
//	cfg.Data.Dir = "data"
//	runner, err := benchmark.NewRunner(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := runner.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("macro ROC AUC:", report.MacroROCAUC)
//
// # Packages
//
//   - dataset: survey schema, CSV tables and key alignment
//   - eda: label statistics and gonum/plot charts
//   - preprocessing: StandardScaler
//   - sklearn/impute: SimpleImputer
//   - sklearn/compose: ColumnTransformer
//   - sklearn/pipeline: Pipeline
//   - sklearn/linear_model: LogisticRegression
//   - sklearn/multioutput: MultiOutputClassifier
//   - sklearn/model_selection: TrainTestSplit
//   - metrics: ROC AUC, log loss, accuracy
//   - benchmark: configuration and the end-to-end runner
//   - core/model: estimator interfaces, state and weight serialisation
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: error types and structured logging
//
// # License
//
// flushot is released under the MIT License.
package flushot
