package errors

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// 警告の出力先。pkg/log が zerolog ブリッジを登録するまでは fallback が使われる。
var (
	warnMu   sync.Mutex
	bridge   func(w error)
	fallback = defaultWarningHandler

	warnOutput io.Writer = os.Stderr
)

// defaultWarningHandler は zerolog で warnOutput (通常は stderr) に一行出力する。
func defaultWarningHandler(w error) {
	l := zerolog.New(warnOutput)
	ev := l.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		ev = ev.EmbedObject(m)
	}
	ev.Msg(w.Error())
}

// SetWarningHandler replaces the handler used when no zerolog bridge is
// installed. nil restores the default stderr handler.
//
//	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	if handler == nil {
		handler = defaultWarningHandler
	}
	fallback = handler
}

// SetZerologWarnFunc installs the bridge pkg/log uses to route warnings
// through the configured logger. It takes precedence over SetWarningHandler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	bridge = warnFunc
}

// Warn reports a condition that does not stop the computation.
func Warn(w error) {
	warnMu.Lock()
	defer warnMu.Unlock()
	if bridge != nil {
		bridge(w)
		return
	}
	fallback(w)
}

// ConvergenceWarning: L-BFGS が max_iter 以内に収束しなかった。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	msg := w.Message
	if msg == "" {
		msg = "increase max_iter or scale the data"
	}
	return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, msg)
}

func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "ConvergenceWarning").
		Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message)
}

func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// AllMissingWarning: 観測値が一つも無い列。統計量を学習できないので FillValue で埋める。
type AllMissingWarning struct {
	Op        string
	Column    int
	FillValue float64
}

func (w *AllMissingWarning) Error() string {
	return fmt.Sprintf("%s: column %d has no observed values; filling with %g", w.Op, w.Column, w.FillValue)
}

func (w *AllMissingWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "AllMissingWarning").
		Str("operation", w.Op).
		Int("column", w.Column).
		Float64("fill_value", w.FillValue)
}

func NewAllMissingWarning(op string, column int, fill float64) *AllMissingWarning {
	return &AllMissingWarning{Op: op, Column: column, FillValue: fill}
}

// UndefinedMetricWarning: 指標が定義できない入力。ROC AUC で片方のクラスしか無い場合など。
// Result はその場合に返される値。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("%s is ill-defined and set to %g: %s", w.Metric, w.Result, w.Condition)
}

func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "UndefinedMetricWarning").
		Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result)
}

func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}
