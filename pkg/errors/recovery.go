package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
)

// PanicError is a panic recovered inside an estimator or a pipeline step.
// gonum reports shape problems by panicking with mat.Error values; when the
// panic value is an error it is reachable through Unwrap, so
// errors.Is(err, mat.ErrShape) works on the recovered error.
type PanicError struct {
	Operation  string
	PanicValue interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// String adds the goroutine stack captured at recovery time.
func (e *PanicError) String() string {
	return e.Error() + "\nStack trace:\n" + e.StackTrace
}

// NewPanicError captures the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		Operation:  operation,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
	}
}

// Recover turns a panic in the deferring function into an error in *err.
//
//	func (lr *LogisticRegression) Fit(X, y mat.Matrix) (err error) {
//	    defer errors.Recover(&err, "LogisticRegression.Fit")
//	    ...
//	}
//
// A non-nil *err is wrapped rather than replaced.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = errors.Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = NewPanicError(operation, r)
}

// SafeExecute runs fn, returning any panic as a *PanicError. MultiOutputClassifier
// uses it so one failing target cannot take down the other goroutines.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
