package dataset

import (
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// FeatureTable holds one row per respondent with the raw survey answers.
// Missing cells stay missing: numeric views return NaN and Levels returns "".
type FeatureTable struct {
	ids   []int64
	names []string
	frame dataframe.DataFrame
}

// LoadFeatures reads a features CSV from path.
func LoadFeatures(path string, schema Schema) (*FeatureTable, error) {
	df, err := openFrame(path, "features")
	if err != nil {
		return nil, err
	}
	return newFeatureTable(df, schema)
}

// ReadFeatures reads a features CSV from r.
func ReadFeatures(r io.Reader, schema Schema) (*FeatureTable, error) {
	df, err := readFrame(r, "features")
	if err != nil {
		return nil, err
	}
	return newFeatureTable(df, schema)
}

func newFeatureTable(df dataframe.DataFrame, schema Schema) (*FeatureTable, error) {
	ids, err := parseIDs(df, "features", schema.IDColumn)
	if err != nil {
		return nil, err
	}
	for _, c := range schema.Features {
		if _, err := column(df, "features", c.Name); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, df.Ncol()-1)
	for _, n := range df.Names() {
		if n != schema.IDColumn {
			names = append(names, n)
		}
	}
	return &FeatureTable{ids: ids, names: names, frame: df}, nil
}

// IDs returns a copy of the row keys in file order.
func (t *FeatureTable) IDs() []int64 {
	out := make([]int64, len(t.ids))
	copy(out, t.ids)
	return out
}

// Names returns the feature column names in file order.
func (t *FeatureTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int { return len(t.ids) }

func (t *FeatureTable) has(name string) bool {
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named column as float64. Missing and non-numeric cells are NaN.
func (t *FeatureTable) Column(name string) ([]float64, error) {
	if !t.has(name) {
		return nil, errors.NewValidationError("features", "unknown column", name)
	}
	return t.frame.Col(name).Float(), nil
}

// Levels returns the raw cell strings of the named column. Missing cells are "".
func (t *FeatureTable) Levels(name string) ([]string, error) {
	if !t.has(name) {
		return nil, errors.NewValidationError("features", "unknown column", name)
	}
	s := t.frame.Col(name)
	records := s.Records()
	for i, nan := range s.IsNaN() {
		if nan {
			records[i] = ""
		}
	}
	return records, nil
}

// NumericColumns lists, in file order, the columns whose non-missing cells all
// parse as numbers. A column with no observed cell at all counts as numeric.
func (t *FeatureTable) NumericColumns() []string {
	var out []string
	for _, name := range t.names {
		s := t.frame.Col(name)
		records := s.Records()
		numeric := true
		for i, nan := range s.IsNaN() {
			if nan {
				continue
			}
			if _, err := strconv.ParseFloat(records[i], 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, name)
		}
	}
	return out
}

// Matrix returns the named columns as an n_rows × len(cols) matrix.
func (t *FeatureTable) Matrix(cols []string) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, errors.NewValidationError("columns", "at least one column is required", cols)
	}
	if t.Len() == 0 {
		return nil, errors.NewModelError("FeatureTable.Matrix", "empty table", errors.ErrEmptyData)
	}
	out := mat.NewDense(t.Len(), len(cols), nil)
	for j, name := range cols {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		out.SetCol(j, values)
	}
	return out, nil
}
