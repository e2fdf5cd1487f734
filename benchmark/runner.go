package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/core/model"
	"github.com/YuminosukeSato/flushot/dataset"
	"github.com/YuminosukeSato/flushot/eda"
	"github.com/YuminosukeSato/flushot/metrics"
	"github.com/YuminosukeSato/flushot/pkg/errors"
	"github.com/YuminosukeSato/flushot/pkg/log"
	"github.com/YuminosukeSato/flushot/sklearn/linear_model"
	"github.com/YuminosukeSato/flushot/sklearn/model_selection"
	"github.com/YuminosukeSato/flushot/sklearn/multioutput"
)

// Pipeline step names, logged under log.StepKey.
const (
	StepLoad     = "load"
	StepExplore  = "explore"
	StepSplit    = "split"
	StepEvaluate = "evaluate"
	StepRefit    = "refit"
	StepSubmit   = "submit"
	StepWeights  = "weights"
)

// Runner executes the walkthrough with one Config.
type Runner struct {
	cfg    *Config
	schema dataset.Schema
	logger log.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger replaces the global logger for this runner.
func WithLogger(l log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner validates cfg and returns a Runner for it.
func NewRunner(cfg *Config, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil {
		return nil, errors.NewValueError("NewRunner", "config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	schema := cfg.Schema()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, schema: schema, logger: log.GetLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// tables are the loaded inputs. test and submission are nil when only the
// training tables were requested.
type tables struct {
	train      *dataset.FeatureTable
	labels     *dataset.LabelTable
	test       *dataset.FeatureTable
	submission *dataset.SubmissionTable
}

// run carries the per-run logger and report through the steps.
type run struct {
	*Runner
	logger log.Logger
	report *Report
}

func (r *Runner) start(mode string) *run {
	report := newReport()
	logger := r.logger.With(log.RunIDKey, report.RunID, log.ComponentKey, "benchmark")
	logger.Info("Run started",
		log.ModeKey, mode,
		log.RandomSeedKey, r.cfg.Split.RandomSeed,
		log.RegularizationKey, r.cfg.Model.C,
	)
	return &run{Runner: r, logger: logger, report: report}
}

// step checks ctx, then runs fn and logs its outcome and duration.
func (rn *run) step(ctx context.Context, name string, fn func(logger log.Logger) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "before step %s", name)
	}
	logger := rn.logger.With(log.StepKey, name)
	started := time.Now()
	logger.Debug("Step started")
	if err := fn(logger); err != nil {
		logger.Error("Step failed", err, log.DurationMsKey, time.Since(started).Milliseconds())
		return errors.Wrapf(err, "step %s", name)
	}
	logger.Info("Step finished", log.DurationMsKey, time.Since(started).Milliseconds())
	return nil
}

// Explore loads the training tables and computes the label statistics and,
// when a plot dir is configured, the EDA plots.
func (r *Runner) Explore(ctx context.Context) (*Report, error) {
	rn := r.start("eda")
	t, err := rn.load(ctx, false)
	if err != nil {
		return rn.report, err
	}
	if err := rn.explore(ctx, t); err != nil {
		return rn.report, err
	}
	return rn.report, nil
}

// Evaluate runs Explore and then fits the pipeline on the training split and
// scores the hold-out split.
func (r *Runner) Evaluate(ctx context.Context) (*Report, error) {
	rn := r.start("evaluate")
	t, err := rn.load(ctx, false)
	if err != nil {
		return rn.report, err
	}
	if err := rn.explore(ctx, t); err != nil {
		return rn.report, err
	}
	if err := rn.evaluate(ctx, t); err != nil {
		return rn.report, err
	}
	return rn.report, nil
}

// Run executes the whole walkthrough: load, explore, split, evaluate, refit on
// every training row, predict the test set and write the submission.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rn := r.start("run")
	t, err := rn.load(ctx, true)
	if err != nil {
		return rn.report, err
	}
	if err := rn.explore(ctx, t); err != nil {
		return rn.report, err
	}
	if err := rn.evaluate(ctx, t); err != nil {
		return rn.report, err
	}
	if err := rn.submit(ctx, t); err != nil {
		return rn.report, err
	}
	rn.logger.Info("Run finished",
		log.PathKey, rn.report.Submission,
		log.ROCAUCKey, rn.report.MacroROCAUC,
	)
	return rn.report, nil
}

func (rn *run) load(ctx context.Context, withTest bool) (*tables, error) {
	t := &tables{}
	err := rn.step(ctx, StepLoad, func(logger log.Logger) error {
		var err error
		d := rn.cfg.Data

		if t.train, err = dataset.LoadFeatures(rn.cfg.DataPath(d.TrainFeatures), rn.schema); err != nil {
			return err
		}
		if t.labels, err = dataset.LoadLabels(rn.cfg.DataPath(d.TrainLabels), rn.schema); err != nil {
			return err
		}
		if err := dataset.AssertAligned("training_features", t.train.IDs(), "training_labels", t.labels.IDs()); err != nil {
			return err
		}
		rn.report.TrainRows = t.train.Len()
		logger.Info("Training tables loaded",
			log.SamplesKey, t.train.Len(),
			log.FeaturesKey, len(t.train.Names()),
			log.TargetsKey, len(t.labels.Targets()),
		)

		if !withTest {
			return nil
		}
		if t.test, err = dataset.LoadFeatures(rn.cfg.DataPath(d.TestFeatures), rn.schema); err != nil {
			return err
		}
		if t.submission, err = dataset.LoadSubmissionFormat(rn.cfg.DataPath(d.SubmissionFormat), rn.schema); err != nil {
			return err
		}
		rn.report.TestRows = t.test.Len()
		logger.Info("Test tables loaded",
			log.SamplesKey, t.test.Len(),
			log.TableKey, "test_features",
		)
		return nil
	})
	return t, err
}

func (rn *run) explore(ctx context.Context, t *tables) error {
	return rn.step(ctx, StepExplore, func(logger log.Logger) error {
		targets := t.labels.Targets()
		columns := make([][]float64, len(targets))
		for k, name := range targets {
			y, err := t.labels.Target(name)
			if err != nil {
				return err
			}
			columns[k] = y

			summary := LabelSummary{Target: name, Rows: len(y)}
			for _, c := range eda.ValueCounts(y, true) {
				if c.Value == 1 {
					summary.PositiveRate = c.Frequency
				}
			}
			rn.report.Labels = append(rn.report.Labels, summary)
			logger.Info("Label distribution",
				log.TargetKey, name,
				log.SamplesKey, summary.Rows,
				log.PositiveRateKey, summary.PositiveRate,
			)
		}

		if len(targets) >= 2 {
			joint, err := eda.Crosstab(columns[0], columns[1], true)
			if err != nil {
				return err
			}
			rn.report.Joint = denseRows(joint.Counts)
			phi, err := eda.PhiCoefficient(columns[0], columns[1])
			if err != nil {
				return err
			}
			rn.report.PhiCoefficient = phi
			logger.Info("Target correlation", log.PhiKey, phi, log.TargetsKey, targets[:2])
		}

		plotDir := rn.cfg.Output.PlotDir
		if plotDir != "" {
			path := filepath.Join(plotDir, "label_distribution.png")
			if err := eda.PlotLabelDistribution(path, targets, columns); err != nil {
				return err
			}
			rn.report.Plots = append(rn.report.Plots, path)
		}

		for _, feature := range rn.cfg.EDA.Features {
			levels, err := t.train.Levels(feature)
			if err != nil {
				return err
			}
			for k, target := range targets {
				rates, err := eda.RateByLevel(levels, columns[k])
				if err != nil {
					return errors.Wrapf(err, "rate of %s by %s", target, feature)
				}
				logger.Debug("Rate by level",
					log.FeatureKey, feature,
					log.TargetKey, target,
					log.LevelsKey, len(rates),
				)
				if plotDir == "" {
					continue
				}
				path := filepath.Join(plotDir, fmt.Sprintf("rate_%s_%s.png", feature, target))
				if err := eda.PlotRateByLevel(path, feature, target, rates); err != nil {
					return err
				}
				rn.report.Plots = append(rn.report.Plots, path)
			}
		}
		return nil
	})
}

// design returns the columns of t selected by name, in the order of cols.
// The pipeline's ColumnTransformer indexes by position in cols, so the test
// table must be laid out like the training one. Non-numeric columns hold NaN
// and are dropped by the ColumnTransformer.
func design(t *dataset.FeatureTable, cols []string) (*mat.Dense, error) {
	return t.Matrix(cols)
}

func (rn *run) evaluate(ctx context.Context, t *tables) error {
	numeric := t.train.NumericColumns()
	rn.report.NumericFeatures = numeric

	var (
		X                 *mat.Dense
		Y                 = t.labels.Matrix()
		trainIdx, testIdx []int
	)
	err := rn.step(ctx, StepSplit, func(logger log.Logger) error {
		var err error
		if X, err = design(t.train, t.train.Names()); err != nil {
			return err
		}
		trainIdx, testIdx, err = model_selection.TrainTestSplit(t.train.Len(), model_selection.Options{
			TestSize:    rn.cfg.Split.TestSize,
			Shuffle:     true,
			Stratify:    model_selection.RowKeys(Y),
			RandomState: rn.cfg.Split.RandomSeed,
		})
		if err != nil {
			return err
		}
		logger.Info("Split done",
			log.TrainRowsKey, len(trainIdx),
			log.EvalRowsKey, len(testIdx),
			log.FeaturesKey, len(numeric),
			log.RandomSeedKey, rn.cfg.Split.RandomSeed,
		)
		return nil
	})
	if err != nil {
		return err
	}

	return rn.step(ctx, StepEvaluate, func(logger log.Logger) error {
		pipe := NewPipeline(t.train.Names(), numeric, rn.cfg)
		if err := pipe.Fit(model_selection.Take(X, trainIdx), model_selection.Take(Y, trainIdx)); err != nil {
			return err
		}
		probs, err := pipe.PredictProba(model_selection.Take(X, testIdx))
		if err != nil {
			return err
		}
		yEval := model_selection.Take(Y, testIdx)
		scores := positiveProba(probs)

		perTarget, err := metrics.ROCAUCScore(yEval, scores, metrics.None)
		if err != nil {
			return err
		}
		macro, err := metrics.MacroROCAUC(yEval, scores)
		if err != nil {
			return err
		}

		targets := t.labels.Targets()
		curves := make([]eda.ROC, len(targets))
		for k, target := range targets {
			rn.report.EvalScores = append(rn.report.EvalScores, TargetScore{Target: target, ROCAUC: perTarget[k]})
			logger.Info("Hold-out ROC AUC", log.TargetKey, target, log.ROCAUCKey, perTarget[k])

			fpr, tpr, _, err := metrics.ROCCurve(
				mat.NewVecDense(len(testIdx), mat.Col(nil, k, yEval)),
				mat.NewVecDense(len(testIdx), mat.Col(nil, k, scores)),
			)
			if err != nil {
				return err
			}
			curves[k] = eda.ROC{Name: target, FPR: fpr, TPR: tpr, AUC: perTarget[k]}
		}
		rn.report.EvalRows = len(testIdx)
		rn.report.MacroROCAUC = macro
		logger.Info("Hold-out macro ROC AUC", log.ROCAUCKey, macro, log.SamplesKey, len(testIdx))

		if rn.cfg.Output.PlotDir != "" {
			path := filepath.Join(rn.cfg.Output.PlotDir, "roc.png")
			if err := eda.PlotROC(path, curves); err != nil {
				return err
			}
			rn.report.Plots = append(rn.report.Plots, path)
		}
		return nil
	})
}

func (rn *run) submit(ctx context.Context, t *tables) error {
	numeric := t.train.NumericColumns()
	pipe := NewPipeline(t.train.Names(), numeric, rn.cfg)

	err := rn.step(ctx, StepRefit, func(logger log.Logger) error {
		X, err := design(t.train, t.train.Names())
		if err != nil {
			return err
		}
		if err := pipe.Fit(X, t.labels.Matrix()); err != nil {
			return err
		}
		logger.Info("Refit on all training rows", log.SamplesKey, t.train.Len(), log.FeaturesKey, len(numeric))
		return nil
	})
	if err != nil {
		return err
	}

	err = rn.step(ctx, StepSubmit, func(logger log.Logger) error {
		if err := dataset.AssertAligned("test_features", t.test.IDs(), "submission_format", t.submission.IDs()); err != nil {
			return err
		}
		X, err := design(t.test, t.train.Names())
		if err != nil {
			return err
		}
		probs, err := pipe.PredictProba(X)
		if err != nil {
			return err
		}
		scores := positiveProba(probs)
		for k, target := range t.labels.Targets() {
			if err := t.submission.Fill(target, mat.Col(nil, k, scores)); err != nil {
				return err
			}
		}
		if err := t.submission.Validate(); err != nil {
			return err
		}
		path := rn.cfg.Output.Submission
		if err := t.submission.Save(path); err != nil {
			return err
		}
		rn.report.Submission = path
		logger.Info("Submission written", log.PathKey, path, log.PredsKey, t.submission.Len())
		return nil
	})
	if err != nil || rn.cfg.Output.Weights == "" {
		return err
	}

	return rn.step(ctx, StepWeights, func(logger log.Logger) error {
		path := rn.cfg.Output.Weights
		if err := writeWeights(path, rn.report.RunID, pipe.Estimator(), t.labels.Targets(), numeric); err != nil {
			return err
		}
		rn.report.Weights = path
		logger.Info("Weights written", log.PathKey, path)
		return nil
	})
}

// WeightsFile is the JSON document written to Output.Weights.
type WeightsFile struct {
	RunID   string                `json:"run_id"`
	Targets []*model.ModelWeights `json:"targets"`
}

// ReadWeights decodes a WeightsFile from path.
func ReadWeights(path string) (*WeightsFile, error) {
	var wf WeightsFile
	if err := model.ReadJSON(path, &wf); err != nil {
		return nil, err
	}
	for _, w := range wf.Targets {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}
	return &wf, nil
}

func writeWeights(path, runID string, est model.MultiOutputClassifier, targets, features []string) error {
	mo, ok := est.(*multioutput.MultiOutputClassifier)
	if !ok {
		return errors.NewValueError("writeWeights", fmt.Sprintf("unsupported estimator %T", est))
	}
	wf := WeightsFile{RunID: runID}
	for k, e := range mo.Estimators() {
		lr, ok := e.(*linear_model.LogisticRegression)
		if !ok {
			return errors.NewValueError("writeWeights", fmt.Sprintf("unsupported classifier %T", e))
		}
		w, err := lr.ExportWeights()
		if err != nil {
			return err
		}
		w.Features = append([]string(nil), features...)
		if w.Metadata == nil {
			w.Metadata = make(map[string]interface{})
		}
		w.Metadata["target"] = targets[k]
		if err := w.Validate(); err != nil {
			return err
		}
		wf.Targets = append(wf.Targets, w)
	}

	return model.WriteJSON(path, wf)
}

func denseRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
