package benchmark

import (
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// LabelSummary describes one target column of the training labels.
type LabelSummary struct {
	Target       string  `yaml:"target"`
	Rows         int     `yaml:"rows"`
	PositiveRate float64 `yaml:"positive_rate"`
}

// TargetScore is the hold-out ROC-AUC of one target.
type TargetScore struct {
	Target string  `yaml:"target"`
	ROCAUC float64 `yaml:"roc_auc"`
}

// Report is the outcome of a run. Fields of steps that did not run stay zero.
type Report struct {
	RunID     string    `yaml:"run_id"`
	StartedAt time.Time `yaml:"started_at"`

	TrainRows       int      `yaml:"train_rows"`
	TestRows        int      `yaml:"test_rows,omitempty"`
	NumericFeatures []string `yaml:"numeric_features,omitempty"`

	Labels []LabelSummary `yaml:"labels,omitempty"`
	// Joint is the normalised h1n1 × seasonal table, rows and columns ordered 0, 1.
	Joint          [][]float64 `yaml:"joint,omitempty"`
	PhiCoefficient float64     `yaml:"phi_coefficient,omitempty"`

	EvalRows    int           `yaml:"eval_rows,omitempty"`
	EvalScores  []TargetScore `yaml:"eval_roc_auc,omitempty"`
	MacroROCAUC float64       `yaml:"macro_roc_auc,omitempty"`

	Submission string   `yaml:"submission,omitempty"`
	Weights    string   `yaml:"weights,omitempty"`
	Plots      []string `yaml:"plots,omitempty"`
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Score returns the hold-out ROC-AUC of target.
func (r *Report) Score(target string) (float64, bool) {
	for _, s := range r.EvalScores {
		if s.Target == target {
			return s.ROCAUC, true
		}
	}
	return 0, false
}

// WriteYAML writes the report as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encode report")
	}
	return errors.Wrap(enc.Close(), "encode report")
}
