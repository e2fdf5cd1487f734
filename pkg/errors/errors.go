// Package errors は flushot のエラー型と警告を定義する。
//
// どのエラーも cockroachdb/errors でスタックトレースが付与されるので、
// fmt.Printf("%+v", err) で発生箇所まで辿れる。構造化された型は
// zerolog.LogObjectMarshaler を実装しており、ログにそのままフィールドとして出る。
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyData: 行または列が 0 の入力。
	ErrEmptyData = errors.New("empty data")
)

// NotFittedError is returned by Predict or Transform before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("flushot: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

func (e *NotFittedError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "NotFittedError").Str("model_name", e.ModelName).Str("method", e.Method)
}

func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError: 行数(Axis 0)または特徴量数(Axis 1)が合わない。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("flushot: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "DimensionError").
		Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("axis_name", e.axisName())
}

func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError names the configuration or hyperparameter that was rejected.
// ParamName uses the dotted config path where there is one, e.g. "split.test_size".
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flushot: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

func (e *ValidationError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "ValidationError").
		Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value)
}

func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError: 引数の値が不正（ラベルが 0/1 でない、クラスが 2 つでない等）。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("flushot: %s: %s", e.Op, e.Message)
}

func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError wraps a cause with the operation and a short kind such as
// "empty data". errors.Is sees through it to the cause.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("flushot: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("flushot: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError: NaN や Inf を検出した。Values は最大 10 個まで。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	shown := e.Values
	more := ""
	if len(shown) > 5 {
		shown, more = shown[:5], ", ..."
	}
	vals := ""
	for i, v := range shown {
		if i > 0 {
			vals += ", "
		}
		vals += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("flushot: numerical instability detected in %s at iteration %d. Values: [%s%s]",
		e.Operation, e.Iteration, vals, more)
}

func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Iteration: iteration})
}

// KeyMismatchError reports two tables whose respondent_id sequences differ:
// features against labels, or test features against the submission format.
// Index is the first differing position, or the shorter length when only
// the lengths differ. LeftKey and RightKey are 0 when Index is out of range.
type KeyMismatchError struct {
	Left     string
	Right    string
	LeftLen  int
	RightLen int
	Index    int
	LeftKey  int64
	RightKey int64
}

func (e *KeyMismatchError) Error() string {
	if e.LeftLen != e.RightLen {
		return fmt.Sprintf("flushot: row keys of %s and %s differ in length: %d vs %d",
			e.Left, e.Right, e.LeftLen, e.RightLen)
	}
	return fmt.Sprintf("flushot: row keys of %s and %s differ at position %d: %d vs %d",
		e.Left, e.Right, e.Index, e.LeftKey, e.RightKey)
}

func (e *KeyMismatchError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "KeyMismatchError").
		Str("left", e.Left).
		Str("right", e.Right).
		Int("left_len", e.LeftLen).
		Int("right_len", e.RightLen).
		Int("index", e.Index).
		Int64("left_key", e.LeftKey).
		Int64("right_key", e.RightKey)
}

func NewKeyMismatchError(left, right string, leftKeys, rightKeys []int64, index int) error {
	e := &KeyMismatchError{
		Left:     left,
		Right:    right,
		LeftLen:  len(leftKeys),
		RightLen: len(rightKeys),
		Index:    index,
	}
	if index >= 0 && index < len(leftKeys) {
		e.LeftKey = leftKeys[index]
	}
	if index >= 0 && index < len(rightKeys) {
		e.RightKey = rightKeys[index]
	}
	return errors.WithStack(e)
}

// cockroachdb/errors の薄いラッパー。呼び出し側が二つの errors パッケージを import しなくて済む。

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func Wrap(err error, message string) error { return errors.Wrap(err, message) }

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func New(message string) error { return errors.New(message) }
