package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// sink は TestLogger とその子ロガーで共有される出力先。
type sink struct {
	mu      sync.Mutex
	level   Level
	buffer  *bytes.Buffer
	records []map[string]any
}

// TestLogger records every line in memory so tests can assert on messages
// and fields. Loggers derived with With share the same records.
type TestLogger struct {
	sink   *sink
	fields map[string]any
}

// NewTestLogger returns a logger that drops records below level, and the
// buffer receiving one JSON object per record.
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	runner, _ := benchmark.NewRunner(cfg, benchmark.WithLogger(logger))
//	...
//	logger.ContainsField(log.StepKey, "submit")
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	s := &sink{level: level, buffer: &bytes.Buffer{}}
	return &TestLogger{sink: s, fields: map[string]any{}}, s.buffer
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.record(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.record(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.record(LevelWarn, msg, fields) }
func (t *TestLogger) Error(msg string, fields ...any) { t.record(LevelError, msg, fields) }

// With implements Logger.With.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	addFields(merged, fields)
	return &TestLogger{sink: t.sink, fields: merged}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	return t.sink.level <= level
}

func (t *TestLogger) record(level Level, msg string, fields []any) {
	if !t.Enabled(context.Background(), level) {
		return
	}
	entry := map[string]any{
		"level":   level.String(),
		"message": msg,
	}
	for k, v := range t.fields {
		entry[k] = v
	}
	addFields(entry, fields)

	// JSON を経由させて数値を float64 にそろえる
	line, err := json.Marshal(entry)
	if err != nil {
		line, _ = json.Marshal(map[string]any{"level": level.String(), "message": msg, ErrAttrKey: err.Error()})
	}
	var decoded map[string]any
	_ = json.Unmarshal(line, &decoded)

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.buffer.Write(line)
	t.sink.buffer.WriteByte('\n')
	t.sink.records = append(t.sink.records, decoded)
}

// addFields copies key/value pairs into dst. A leading error in an
// odd-length list goes under ErrAttrKey, as in ZerologLogger.
func addFields(dst map[string]any, fields []any) {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			dst[ErrAttrKey] = err.Error()
		}
		fields = fields[1:]
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			dst[key] = err.Error()
			continue
		}
		dst[key] = fields[i+1]
	}
}

// GetLogEntries returns a copy of the captured records in order.
func (t *TestLogger) GetLogEntries() ([]map[string]any, error) {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	return append([]map[string]any(nil), t.sink.records...), nil
}

// FieldValues returns the value of key on every record that has it, in order.
func (t *TestLogger) FieldValues(key string) []any {
	entries, _ := t.GetLogEntries()
	var out []any
	for _, e := range entries {
		if v, ok := e[key]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ContainsMessage reports whether any record's message contains text.
func (t *TestLogger) ContainsMessage(text string) bool {
	entries, _ := t.GetLogEntries()
	for _, e := range entries {
		if msg, _ := e["message"].(string); strings.Contains(msg, text) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record has key set to value.
// Numbers come back as float64.
func (t *TestLogger) ContainsField(key string, value any) bool {
	for _, v := range t.FieldValues(key) {
		if v == value {
			return true
		}
	}
	return false
}

// Clear drops everything captured so far.
func (t *TestLogger) Clear() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.buffer.Reset()
	t.sink.records = nil
}

// TestLoggerProvider implements LoggerProvider over a single TestLogger.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider creates a provider and returns the shared buffer.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	logger, buffer := NewTestLogger(level)
	return &TestLoggerProvider{logger: logger}, buffer
}

func (p *TestLoggerProvider) GetLogger() Logger { return p.logger }

func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger.sink.mu.Lock()
	defer p.logger.sink.mu.Unlock()
	p.logger.sink.level = level
}
