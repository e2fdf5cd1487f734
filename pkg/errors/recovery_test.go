package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestRecover_ConvertsPanic(t *testing.T) {
	fit := func() (err error) {
		defer Recover(&err, "LogisticRegression.Fit")
		var weights []float64
		_ = weights[3]
		return nil
	}

	err := fit()
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %T (%v)", err, err)
	}
	if panicErr.Operation != "LogisticRegression.Fit" {
		t.Errorf("Operation = %q", panicErr.Operation)
	}
	if !strings.Contains(panicErr.Error(), "index out of range") {
		t.Errorf("Error() = %q, want index out of range", panicErr.Error())
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include the stack trace")
	}
	if !strings.Contains(panicErr.StackTrace, "goroutine") {
		t.Error("StackTrace should hold the goroutine dump")
	}
}

func TestRecover_UnwrapsErrorPanics(t *testing.T) {
	dims := func() (err error) {
		defer Recover(&err, "ColumnTransformer.Transform")
		panic(ErrEmptyData)
	}

	err := dims()
	if !Is(err, ErrEmptyData) {
		t.Errorf("panic value should be reachable, got %v", err)
	}

	strPanic := SafeExecute("x", func() error { panic("plain") })
	var panicErr *PanicError
	if !As(strPanic, &panicErr) || panicErr.Unwrap() != nil {
		t.Errorf("string panic should not unwrap, got %v", strPanic)
	}
}

func TestRecover_KeepsExistingError(t *testing.T) {
	original := fmt.Errorf("objective returned NaN")

	fn := func() (err error) {
		defer Recover(&err, "optimize")
		err = original
		panic("line search blew up")
	}

	err := fn()
	if !Is(err, original) {
		t.Error("existing error should stay in the chain")
	}
	if !strings.Contains(err.Error(), "panic in optimize") {
		t.Errorf("Error() = %q, want panic context", err.Error())
	}
}

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name      string
		fn        func() error
		wantErr   bool
		wantPanic bool
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "plain error", fn: func() error { return ErrEmptyData }, wantErr: true},
		{name: "panic string", fn: func() error { panic("boom") }, wantErr: true, wantPanic: true},
		{name: "panic int", fn: func() error { panic(42) }, wantErr: true, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("transform", tt.fn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeExecute() error = %v, wantErr %v", err, tt.wantErr)
			}
			var panicErr *PanicError
			if got := As(err, &panicErr); got != tt.wantPanic {
				t.Errorf("As(*PanicError) = %v, want %v", got, tt.wantPanic)
			}
		})
	}
}

func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("BenchmarkOp", func() error { return nil })
	}
}
