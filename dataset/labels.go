package dataset

import (
	"io"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// LabelTable holds the binary vaccination targets, one row per respondent.
type LabelTable struct {
	ids     []int64
	targets []string
	values  [][]float64
}

// LoadLabels reads a labels CSV from path.
func LoadLabels(path string, schema Schema) (*LabelTable, error) {
	df, err := openFrame(path, "labels")
	if err != nil {
		return nil, err
	}
	return newLabelTable(df, schema)
}

// ReadLabels reads a labels CSV from r.
func ReadLabels(r io.Reader, schema Schema) (*LabelTable, error) {
	df, err := readFrame(r, "labels")
	if err != nil {
		return nil, err
	}
	return newLabelTable(df, schema)
}

func newLabelTable(df dataframe.DataFrame, schema Schema) (*LabelTable, error) {
	ids, err := parseIDs(df, "labels", schema.IDColumn)
	if err != nil {
		return nil, err
	}
	t := &LabelTable{ids: ids, targets: append([]string(nil), schema.Targets...)}
	for _, name := range schema.Targets {
		values, err := binaryColumn(df, "labels", name)
		if err != nil {
			return nil, err
		}
		t.values = append(t.values, values)
	}
	return t, nil
}

// IDs returns a copy of the row keys in file order.
func (t *LabelTable) IDs() []int64 {
	out := make([]int64, len(t.ids))
	copy(out, t.ids)
	return out
}

// Targets returns the target names.
func (t *LabelTable) Targets() []string {
	return append([]string(nil), t.targets...)
}

// Len returns the number of rows.
func (t *LabelTable) Len() int { return len(t.ids) }

// Target returns a copy of one target column.
func (t *LabelTable) Target(name string) ([]float64, error) {
	for k, n := range t.targets {
		if n == name {
			return append([]float64(nil), t.values[k]...), nil
		}
	}
	return nil, errors.NewValidationError("labels", "unknown target", name)
}

// Matrix returns the labels as an n_rows × n_targets matrix in target order.
func (t *LabelTable) Matrix() *mat.Dense {
	out := mat.NewDense(t.Len(), len(t.targets), nil)
	for k, values := range t.values {
		out.SetCol(k, values)
	}
	return out
}
