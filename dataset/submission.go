package dataset

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// SubmissionTable is the submission-format template with its probability
// columns. Fill overwrites a column; the ids never change.
type SubmissionTable struct {
	idColumn string
	ids      []int64
	targets  []string
	probs    [][]float64
}

// LoadSubmissionFormat reads the submission template from path.
func LoadSubmissionFormat(path string, schema Schema) (*SubmissionTable, error) {
	df, err := openFrame(path, "submission_format")
	if err != nil {
		return nil, err
	}
	return newSubmissionTable(df, schema)
}

// ReadSubmissionFormat reads the submission template from r.
func ReadSubmissionFormat(r io.Reader, schema Schema) (*SubmissionTable, error) {
	df, err := readFrame(r, "submission_format")
	if err != nil {
		return nil, err
	}
	return newSubmissionTable(df, schema)
}

func newSubmissionTable(df dataframe.DataFrame, schema Schema) (*SubmissionTable, error) {
	ids, err := parseIDs(df, "submission_format", schema.IDColumn)
	if err != nil {
		return nil, err
	}
	t := &SubmissionTable{
		idColumn: schema.IDColumn,
		ids:      ids,
		targets:  append([]string(nil), schema.Targets...),
	}
	for _, name := range schema.Targets {
		s, err := column(df, "submission_format", name)
		if err != nil {
			return nil, err
		}
		t.probs = append(t.probs, s.Float())
	}
	return t, nil
}

// IDs returns a copy of the template row keys.
func (t *SubmissionTable) IDs() []int64 {
	return append([]int64(nil), t.ids...)
}

// Len returns the number of rows.
func (t *SubmissionTable) Len() int { return len(t.ids) }

// Column returns a copy of one probability column.
func (t *SubmissionTable) Column(target string) ([]float64, error) {
	k, err := t.index(target)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), t.probs[k]...), nil
}

func (t *SubmissionTable) index(target string) (int, error) {
	for k, n := range t.targets {
		if n == target {
			return k, nil
		}
	}
	return -1, errors.NewValidationError("submission_format", "unknown target", target)
}

// Fill overwrites the probability column of target.
func (t *SubmissionTable) Fill(target string, probs []float64) error {
	k, err := t.index(target)
	if err != nil {
		return err
	}
	if len(probs) != len(t.ids) {
		return errors.NewDimensionError("SubmissionTable.Fill", len(t.ids), len(probs), 0)
	}
	t.probs[k] = append([]float64(nil), probs...)
	return nil
}

// Validate checks that every probability is finite and in [0, 1].
func (t *SubmissionTable) Validate() error {
	for k, col := range t.probs {
		for i, p := range col {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return errors.NewValidationError(t.targets[k],
					"probability must be in [0, 1] at row "+strconv.Itoa(i), p)
			}
		}
	}
	return nil
}

// WriteCSV writes the id column followed by the target columns. Probabilities
// are written with the shortest representation that round-trips.
func (t *SubmissionTable) WriteCSV(w io.Writer) error {
	ids := make([]int, len(t.ids))
	for i, id := range t.ids {
		ids[i] = int(id)
	}
	cols := []series.Series{series.New(ids, series.Int, t.idColumn)}
	for k, name := range t.targets {
		cells := make([]string, len(t.probs[k]))
		for i, p := range t.probs[k] {
			cells[i] = strconv.FormatFloat(p, 'g', -1, 64)
		}
		cols = append(cols, series.New(cells, series.String, name))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return errors.Wrap(df.Err, "build submission frame")
	}
	if err := df.WriteCSV(w); err != nil {
		return errors.Wrap(err, "write submission")
	}
	return nil
}

// Save writes the submission to path, creating parent directories.
func (t *SubmissionTable) Save(path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return t.WriteCSV(f)
}
