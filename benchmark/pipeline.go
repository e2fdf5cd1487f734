package benchmark

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/preprocessing"
	"github.com/YuminosukeSato/flushot/sklearn/compose"
	"github.com/YuminosukeSato/flushot/sklearn/impute"
	"github.com/YuminosukeSato/flushot/sklearn/linear_model"
	"github.com/YuminosukeSato/flushot/sklearn/multioutput"
	"github.com/YuminosukeSato/flushot/sklearn/pipeline"
)

// NewPipeline builds the walkthrough model over a matrix whose columns are
// inputColumns:
//
//	preprocessor: ColumnTransformer(numeric: [standard_scaler, simple_imputer(median)], remainder=drop)
//	estimators:   MultiOutputClassifier(LogisticRegression(penalty=l2, C))
//
// Columns outside numericCols are dropped, so non-numeric survey answers
// never reach the model.
func NewPipeline(inputColumns, numericCols []string, cfg *Config) *pipeline.Pipeline {
	numeric := pipeline.New(
		pipeline.Step{Name: "standard_scaler", Transformer: preprocessing.NewStandardScalerDefault()},
		pipeline.Step{Name: "simple_imputer", Transformer: impute.NewSimpleImputer(impute.WithStrategy(impute.Median))},
	)
	preprocessor := compose.NewColumnTransformer(inputColumns, compose.Drop,
		compose.Spec{Name: "numeric", Transformer: numeric.AsTransformer(), Columns: numericCols},
	)
	lr := linear_model.NewLogisticRegression(
		linear_model.WithLRPenalty("l2"),
		linear_model.WithLRC(cfg.Model.C),
		linear_model.WithLRMaxIter(cfg.Model.MaxIter),
		linear_model.WithLRTol(cfg.Model.Tol),
	)
	return pipeline.New(
		pipeline.Step{Name: "preprocessor", Transformer: preprocessor},
	).WithEstimator("estimators", multioutput.NewMultiOutputClassifier(lr))
}

// positiveProba collects P(class=1) of every target into an n × targets matrix.
// LogisticRegression sorts its classes, so the positive class is the last column.
func positiveProba(probs []mat.Matrix) *mat.Dense {
	if len(probs) == 0 {
		return nil
	}
	n, _ := probs[0].Dims()
	out := mat.NewDense(n, len(probs), nil)
	for k, p := range probs {
		_, c := p.Dims()
		out.SetCol(k, mat.Col(nil, c-1, p))
	}
	return out
}
