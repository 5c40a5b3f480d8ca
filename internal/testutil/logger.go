// Package testutil holds test helpers shared across packages.
package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
)

// Entry is one captured log call with the fields accumulated by With,
// WithContext, WithError and Named.
type Entry struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the last field named key.
func (e Entry) Field(key string) (interface{}, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

type sink struct {
	mu      sync.Mutex
	entries []Entry
}

// RecordingLogger implements logging.Logger and keeps every entry in memory.
// Derived loggers share the parent's sink.
type RecordingLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &sink{}}
}

func (l *RecordingLogger) record(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.sink.mu.Lock()
	l.sink.entries = append(l.sink.entries, Entry{Level: level, Logger: l.name, Message: msg, Fields: all})
	l.sink.mu.Unlock()
}

func (l *RecordingLogger) Debug(msg string, fields ...logging.Field) { l.record("debug", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...logging.Field)  { l.record("info", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...logging.Field)  { l.record("warn", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...logging.Field) { l.record("error", msg, fields) }

// Fatal records at level "fatal" and does not exit.
func (l *RecordingLogger) Fatal(msg string, fields ...logging.Field) { l.record("fatal", msg, fields) }

func (l *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	next := &RecordingLogger{sink: l.sink, name: l.name}
	next.fields = append(append(next.fields, l.fields...), fields...)
	return next
}

func (l *RecordingLogger) WithContext(ctx context.Context) logging.Logger {
	if id := logging.RequestIDFromContext(ctx); id != "" {
		return l.With(logging.String("request_id", id))
	}
	return l
}

func (l *RecordingLogger) WithError(err error) logging.Logger {
	return l.With(logging.Err(err))
}

func (l *RecordingLogger) Named(name string) logging.Logger {
	next := l.With().(*RecordingLogger)
	if l.name != "" {
		name = l.name + "." + name
	}
	next.name = name
	return next
}

func (l *RecordingLogger) Sync() error { return nil }

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]Entry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

// Find returns the first entry with the given level and message.
func (l *RecordingLogger) Find(level, msg string) (Entry, bool) {
	for _, e := range l.Entries() {
		if e.Level == level && e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

func (l *RecordingLogger) Reset() {
	l.sink.mu.Lock()
	l.sink.entries = nil
	l.sink.mu.Unlock()
}
