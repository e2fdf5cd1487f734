// Package model_selection splits row indices into train and test sets.
package model_selection

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/flushot/pkg/errors"
)

// Options mirrors the keyword arguments of scikit-learn's train_test_split.
type Options struct {
	// TestSize is the fraction of rows put in the test split, in (0, 1).
	TestSize float64
	// Shuffle permutes rows before splitting. Stratify requires it.
	Shuffle bool
	// Stratify holds one class key per row. Empty disables stratification.
	Stratify []string
	// RandomState seeds the permutation.
	RandomState int64
}

// DefaultOptions returns TestSize 0.25 with shuffling on, as scikit-learn does.
func DefaultOptions() Options {
	return Options{TestSize: 0.25, Shuffle: true}
}

// TrainTestSplit returns train and test row indices for n rows.
// The test split holds ceil(TestSize·n) rows. The same options always give the
// same split.
func TrainTestSplit(n int, opts Options) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, errors.NewValidationError("n_samples", "need at least 2 rows to split", n)
	}
	if !(opts.TestSize > 0 && opts.TestSize < 1) {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", opts.TestSize)
	}
	nTest := int(math.Ceil(opts.TestSize * float64(n)))
	nTrain := n - nTest
	if nTrain == 0 {
		return nil, nil, errors.NewValidationError("test_size", "leaves an empty train split", opts.TestSize)
	}

	if len(opts.Stratify) > 0 {
		if !opts.Shuffle {
			return nil, nil, errors.NewValueError("TrainTestSplit", "stratified train/test split is not implemented for shuffle=false")
		}
		if len(opts.Stratify) != n {
			return nil, nil, errors.NewDimensionError("TrainTestSplit", n, len(opts.Stratify), 0)
		}
		return stratifiedSplit(opts.Stratify, nTest, rand.New(rand.NewSource(opts.RandomState)))
	}

	if !opts.Shuffle {
		train, test = make([]int, nTrain), make([]int, nTest)
		for i := range train {
			train[i] = i
		}
		for i := range test {
			test[i] = nTrain + i
		}
		return train, test, nil
	}

	perm := rand.New(rand.NewSource(opts.RandomState)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func stratifiedSplit(keys []string, nTest int, rng *rand.Rand) (train, test []int, err error) {
	members := make(map[string][]int)
	var classes []string
	for i, k := range keys {
		if _, ok := members[k]; !ok {
			classes = append(classes, k)
		}
		members[k] = append(members[k], i)
	}
	sort.Strings(classes)

	n := len(keys)
	for _, c := range classes {
		if len(members[c]) < 2 {
			return nil, nil, errors.NewValueError("TrainTestSplit",
				"the least populated class "+strconv.Quote(c)+" has only 1 member, which is too few; the minimum number of groups for any class cannot be less than 2")
		}
	}
	if nTest < len(classes) {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			"the test_size = "+strconv.Itoa(nTest)+" should be greater or equal to the number of classes = "+strconv.Itoa(len(classes)))
	}
	if n-nTest < len(classes) {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			"the train_size = "+strconv.Itoa(n-nTest)+" should be greater or equal to the number of classes = "+strconv.Itoa(len(classes)))
	}

	counts := make([]int, len(classes))
	for i, c := range classes {
		counts[i] = len(members[c])
	}
	alloc := allocate(counts, n, nTest)

	for i, c := range classes {
		idx := append([]int(nil), members[c]...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		test = append(test, idx[:alloc[i]]...)
		train = append(train, idx[alloc[i]:]...)
	}
	rng.Shuffle(len(train), func(a, b int) { train[a], train[b] = train[b], train[a] })
	rng.Shuffle(len(test), func(a, b int) { test[a], test[b] = test[b], test[a] })
	return train, test, nil
}

// allocate splits total across classes proportionally to counts using the
// largest remainder method. Ties go to the earlier class.
func allocate(counts []int, n, total int) []int {
	alloc := make([]int, len(counts))
	rem := make([]float64, len(counts))
	assigned := 0
	for i, c := range counts {
		q := float64(total) * float64(c) / float64(n)
		alloc[i] = int(math.Floor(q))
		rem[i] = q - float64(alloc[i])
		assigned += alloc[i]
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for k := 0; assigned < total; k = (k + 1) % len(order) {
		i := order[k]
		if alloc[i] < counts[i] {
			alloc[i]++
			assigned++
		}
	}
	return alloc
}

// RowKeys turns each row of a label matrix into one stratification key, so a
// multi-target matrix is stratified on label combinations.
func RowKeys(Y mat.Matrix) []string {
	r, c := Y.Dims()
	keys := make([]string, r)
	parts := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			parts[j] = strconv.FormatFloat(Y.At(i, j), 'g', -1, 64)
		}
		keys[i] = strings.Join(parts, " ")
	}
	return keys
}

// Take returns the rows of X listed in idx, in that order.
func Take(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for k, i := range idx {
		for j := 0; j < c; j++ {
			out.Set(k, j, X.At(i, j))
		}
	}
	return out
}

// TakeSlice returns s[idx[0]], s[idx[1]], ...
func TakeSlice[T any](s []T, idx []int) []T {
	out := make([]T, len(idx))
	for k, i := range idx {
		out[k] = s[i]
	}
	return out
}
