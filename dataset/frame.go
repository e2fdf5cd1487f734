package dataset

import (
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// missingValues are the cell contents treated as missing, as pandas does by default.
var missingValues = []string{"", "NA", "NaN", "N/A", "nan", "null"}

// readFrame parses a CSV with every column kept as a string series.
func readFrame(r io.Reader, table string) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return df, errors.Wrapf(df.Err, "read %s", table)
	}
	return df, nil
}

// openFrame opens path and parses it with readFrame.
func openFrame(path, table string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "open %s", table)
	}
	defer f.Close()
	return readFrame(f, table)
}

// column returns the named series or a ValidationError naming the table.
func column(df dataframe.DataFrame, table, name string) (series.Series, error) {
	s := df.Col(name)
	if s.Err != nil {
		return s, errors.NewValidationError(table, "missing column", name)
	}
	return s, nil
}

// parseIDs reads the id column as int64 row keys.
func parseIDs(df dataframe.DataFrame, table, idColumn string) ([]int64, error) {
	s, err := column(df, table, idColumn)
	if err != nil {
		return nil, err
	}
	ints, err := s.Int()
	if err != nil {
		return nil, errors.Wrapf(err, "%s: column %s must hold integer ids", table, idColumn)
	}
	ids := make([]int64, len(ints))
	for i, v := range ints {
		ids[i] = int64(v)
	}
	return ids, nil
}

// binaryColumn reads a column whose every cell must be 0 or 1.
func binaryColumn(df dataframe.DataFrame, table, name string) ([]float64, error) {
	s, err := column(df, table, name)
	if err != nil {
		return nil, err
	}
	values := s.Float()
	raw := s.Records()
	for i, v := range values {
		if v != 0 && v != 1 {
			return nil, errors.NewValidationError(table, "label must be 0 or 1 in column "+name, raw[i])
		}
	}
	return values, nil
}
