// Package dataset loads the flu-shot survey tables and enforces the row-key
// alignment every later step relies on.
//
// Tables are read with go-gota. Cells are kept as strings on load and only
// converted when a numeric view is requested, so "dtype" detection matches
// the way a dataframe library infers it from the raw file.
package dataset

import (
	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Kind describes how a survey answer is encoded.
type Kind int

const (
	// Binary answers are 0/1.
	Binary Kind = iota
	// Ordinal answers are small ordered integers (concern 0-3, opinions 1-5).
	Ordinal
	// Nominal answers are free-text categories such as "18 - 34 Years".
	Nominal
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Ordinal:
		return "ordinal"
	case Nominal:
		return "nominal"
	default:
		return "unknown"
	}
}

// Column is one feature column of the survey.
type Column struct {
	Name string
	Kind Kind
}

// Schema names the id column, the feature columns and the target columns.
type Schema struct {
	IDColumn string
	Features []Column
	Targets  []string
}

// Default column names of the flu-shot benchmark.
const (
	DefaultIDColumn = "respondent_id"
	H1N1Target      = "h1n1_vaccine"
	SeasonalTarget  = "seasonal_vaccine"
)

// DefaultSchema returns the 35-feature schema of the flu-shot survey.
func DefaultSchema() Schema {
	cols := []Column{
		{"h1n1_concern", Ordinal},
		{"h1n1_knowledge", Ordinal},
		{"behavioral_antiviral_meds", Binary},
		{"behavioral_avoidance", Binary},
		{"behavioral_face_mask", Binary},
		{"behavioral_wash_hands", Binary},
		{"behavioral_large_gatherings", Binary},
		{"behavioral_outside_home", Binary},
		{"behavioral_touch_face", Binary},
		{"doctor_recc_h1n1", Binary},
		{"doctor_recc_seasonal", Binary},
		{"chronic_med_condition", Binary},
		{"child_under_6_months", Binary},
		{"health_worker", Binary},
		{"health_insurance", Binary},
		{"opinion_h1n1_vacc_effective", Ordinal},
		{"opinion_h1n1_risk", Ordinal},
		{"opinion_h1n1_sick_from_vacc", Ordinal},
		{"opinion_seas_vacc_effective", Ordinal},
		{"opinion_seas_risk", Ordinal},
		{"opinion_seas_sick_from_vacc", Ordinal},
		{"age_group", Nominal},
		{"education", Nominal},
		{"race", Nominal},
		{"sex", Nominal},
		{"income_poverty", Nominal},
		{"marital_status", Nominal},
		{"rent_or_own", Nominal},
		{"employment_status", Nominal},
		{"hhs_geo_region", Nominal},
		{"census_msa", Nominal},
		{"household_adults", Ordinal},
		{"household_children", Ordinal},
		{"employment_industry", Nominal},
		{"employment_occupation", Nominal},
	}
	return Schema{
		IDColumn: DefaultIDColumn,
		Features: cols,
		Targets:  []string{H1N1Target, SeasonalTarget},
	}
}

// FeatureNames returns the feature column names in schema order.
func (s Schema) FeatureNames() []string {
	names := make([]string, len(s.Features))
	for i, c := range s.Features {
		names[i] = c.Name
	}
	return names
}

// Kind returns the kind of the named feature.
func (s Schema) Kind(name string) (Kind, bool) {
	for _, c := range s.Features {
		if c.Name == name {
			return c.Kind, true
		}
	}
	return 0, false
}

// Validate checks that the schema names an id column and at least one target,
// and that no name is used twice.
func (s Schema) Validate() error {
	if s.IDColumn == "" {
		return errors.NewValidationError("id_column", "is required", s.IDColumn)
	}
	if len(s.Targets) == 0 {
		return errors.NewValidationError("targets", "at least one target is required", s.Targets)
	}
	seen := map[string]bool{s.IDColumn: true}
	for _, c := range s.Features {
		if seen[c.Name] {
			return errors.NewValidationError("features", "duplicate column", c.Name)
		}
		seen[c.Name] = true
	}
	for _, t := range s.Targets {
		if seen[t] {
			return errors.NewValidationError("targets", "duplicate column", t)
		}
		seen[t] = true
	}
	return nil
}
