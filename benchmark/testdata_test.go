package benchmark

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/flushot/dataset"
)

// survey describes a synthetic copy of the four competition tables.
type survey struct {
	dir        string
	trainRows  int
	testRows   int
	seed       int64
	shuffleIDs bool // swaps two label ids to break alignment
	submitSkew bool // drops the last test id from the submission format
}

// write creates the four CSVs under s.dir. h1n1_vaccine follows h1n1_concern
// and doctor_recc_h1n1; seasonal_vaccine follows opinion_seas_risk and
// doctor_recc_seasonal, so a linear model separates both well.
func (s survey) write(t *testing.T) {
	t.Helper()
	rng := rand.New(rand.NewSource(s.seed))
	schema := dataset.DefaultSchema()

	trainFeatures, labels := s.table(rng, schema, 0, s.trainRows)
	testFeatures, _ := s.table(rng, schema, 100000, s.testRows)

	var lb strings.Builder
	lb.WriteString("respondent_id,h1n1_vaccine,seasonal_vaccine\n")
	for i, l := range labels {
		id := i
		if s.shuffleIDs && i < 2 {
			id = 1 - i
		}
		fmt.Fprintf(&lb, "%d,%d,%d\n", id, l[0], l[1])
	}

	var sb strings.Builder
	sb.WriteString("respondent_id,h1n1_vaccine,seasonal_vaccine\n")
	n := s.testRows
	if s.submitSkew {
		n--
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%d,0.5,0.7\n", 100000+i)
	}

	files := map[string]string{
		"training_set_features.csv": trainFeatures,
		"training_set_labels.csv":   lb.String(),
		"test_set_features.csv":     testFeatures,
		"submission_format.csv":     sb.String(),
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(s.dir, name), []byte(body), 0o644))
	}
}

func (s survey) table(rng *rand.Rand, schema dataset.Schema, firstID, n int) (string, [][2]int) {
	var b strings.Builder
	b.WriteString(schema.IDColumn)
	for _, c := range schema.Features {
		b.WriteString("," + c.Name)
	}
	b.WriteString("\n")

	labels := make([][2]int, n)
	for i := 0; i < n; i++ {
		row := make(map[string]float64, len(schema.Features))
		cells := make([]string, 0, len(schema.Features)+1)
		cells = append(cells, fmt.Sprint(firstID+i))
		for _, c := range schema.Features {
			var cell string
			switch c.Kind {
			case dataset.Binary:
				v := float64(rng.Intn(2))
				row[c.Name] = v
				cell = fmt.Sprintf("%.1f", v)
			case dataset.Ordinal:
				v := float64(1 + rng.Intn(5))
				row[c.Name] = v
				cell = fmt.Sprintf("%.1f", v)
			default:
				cell = fmt.Sprintf("level %c", 'a'+rune(rng.Intn(3)))
			}
			// 5% of the cells are missing, as in the real survey.
			if rng.Float64() < 0.05 {
				cell = ""
			}
			cells = append(cells, cell)
		}
		b.WriteString(strings.Join(cells, ",") + "\n")

		h1n1 := row["h1n1_concern"] + 2*row["doctor_recc_h1n1"] + rng.NormFloat64()
		seas := row["opinion_seas_risk"] + 2*row["doctor_recc_seasonal"] + rng.NormFloat64()
		labels[i] = [2]int{btoi(h1n1 > 3.5), btoi(seas > 4)}
		if i < 8 {
			// every label combination appears at least twice
			labels[i] = [2]int{i % 2, (i / 2) % 2}
		}
	}
	return b.String(), labels
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// testConfig points a default Config at a freshly written synthetic survey.
func testConfig(t *testing.T, s survey) *Config {
	t.Helper()
	if s.dir == "" {
		s.dir = t.TempDir()
	}
	if s.trainRows == 0 {
		s.trainRows = 240
	}
	if s.testRows == 0 {
		s.testRows = 60
	}
	s.write(t)

	out := t.TempDir()
	cfg := DefaultConfig()
	cfg.Data.Dir = s.dir
	cfg.Output.Submission = filepath.Join(out, "my_submission.csv")
	return cfg
}
