package dataset

import "github.com/YuminosukeSato/flushot/pkg/errors"

// AssertAligned checks that two tables carry the same row keys in the same
// order. It returns a *errors.KeyMismatchError naming the first differing
// position otherwise.
func AssertAligned(leftName string, left []int64, rightName string, right []int64) error {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for i := 0; i < n; i++ {
		if left[i] != right[i] {
			return errors.NewKeyMismatchError(leftName, rightName, left, right, i)
		}
	}
	if len(left) != len(right) {
		return errors.NewKeyMismatchError(leftName, rightName, left, right, n)
	}
	return nil
}
