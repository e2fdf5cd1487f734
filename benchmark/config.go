// Package benchmark runs the flu-shot walkthrough end to end: load the survey
// tables, explore the labels, evaluate the scaling + median imputation +
// logistic regression pipeline on a stratified hold-out split, refit on all
// training rows and write the submission.
package benchmark

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/flushot/dataset"
	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Config holds every knob of a benchmark run.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Split   SplitConfig   `yaml:"split"`
	Model   ModelConfig   `yaml:"model"`
	EDA     EDAConfig     `yaml:"eda"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig locates the four input tables.
type DataConfig struct {
	Dir              string   `yaml:"dir"`
	TrainFeatures    string   `yaml:"train_features"`
	TrainLabels      string   `yaml:"train_labels"`
	TestFeatures     string   `yaml:"test_features"`
	SubmissionFormat string   `yaml:"submission_format"`
	IDColumn         string   `yaml:"id_column"`
	Targets          []string `yaml:"targets"`
}

// SplitConfig configures the evaluation hold-out.
type SplitConfig struct {
	TestSize   float64 `yaml:"test_size"`
	RandomSeed int64   `yaml:"random_seed"`
}

// ModelConfig holds the logistic regression hyperparameters.
type ModelConfig struct {
	C       float64 `yaml:"C"`
	MaxIter int     `yaml:"max_iter"`
	Tol     float64 `yaml:"tol"`
}

// EDAConfig lists the features whose vaccination rate per level is reported.
type EDAConfig struct {
	Features []string `yaml:"features"`
}

// OutputConfig names the run artefacts. Empty PlotDir or Weights disables them.
type OutputConfig struct {
	Submission string `yaml:"submission"`
	PlotDir    string `yaml:"plot_dir"`
	Weights    string `yaml:"weights"`
}

// LoggingConfig configures pkg/log.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the settings of the published walkthrough.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:              "data",
			TrainFeatures:    "training_set_features.csv",
			TrainLabels:      "training_set_labels.csv",
			TestFeatures:     "test_set_features.csv",
			SubmissionFormat: "submission_format.csv",
			IDColumn:         dataset.DefaultIDColumn,
			Targets:          []string{dataset.H1N1Target, dataset.SeasonalTarget},
		},
		Split: SplitConfig{
			TestSize:   0.33,
			RandomSeed: 6,
		},
		Model: ModelConfig{
			C:       1.0,
			MaxIter: 100,
			Tol:     1e-4,
		},
		EDA: EDAConfig{
			Features: []string{
				"h1n1_concern",
				"h1n1_knowledge",
				"opinion_h1n1_vacc_effective",
				"opinion_h1n1_risk",
				"opinion_h1n1_sick_from_vacc",
				"opinion_seas_vacc_effective",
				"opinion_seas_risk",
				"opinion_seas_sick_from_vacc",
				"sex",
				"age_group",
				"race",
			},
		},
		Output: OutputConfig{
			Submission: "my_submission.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys absent from the file
// keep their default.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write config %s", path)
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if len(c.Data.Targets) == 0 {
		return errors.NewValidationError("data.targets", "at least one target is required", c.Data.Targets)
	}
	if c.Data.IDColumn == "" {
		return errors.NewValidationError("data.id_column", "is required", c.Data.IDColumn)
	}
	if !(c.Split.TestSize > 0 && c.Split.TestSize < 1) {
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", c.Split.TestSize)
	}
	if !(c.Model.C > 0) {
		return errors.NewValidationError("model.C", "must be positive", c.Model.C)
	}
	if c.Model.MaxIter <= 0 {
		return errors.NewValidationError("model.max_iter", "must be positive", c.Model.MaxIter)
	}
	if !(c.Model.Tol > 0) {
		return errors.NewValidationError("model.tol", "must be positive", c.Model.Tol)
	}
	if c.Output.Submission == "" {
		return errors.NewValidationError("output.submission", "is required", c.Output.Submission)
	}
	return nil
}

// Schema returns the survey schema with the configured id column and targets.
func (c *Config) Schema() dataset.Schema {
	s := dataset.DefaultSchema()
	s.IDColumn = c.Data.IDColumn
	s.Targets = append([]string(nil), c.Data.Targets...)
	return s
}

// DataPath joins name onto the data directory.
func (c *Config) DataPath(name string) string {
	return filepath.Join(c.Data.Dir, name)
}
