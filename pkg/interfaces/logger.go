package interfaces

import "context"

// Logger is the leveled logging contract the engine's components expect.
// It mirrors the interface exposed by github.com/goliatone/go-logger so host
// applications can plug that package in without adapters.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider exposes named loggers, typically one child per component
// (ingest, store, watch).
type LoggerProvider interface {
	GetLogger(name string) Logger
}

type noopLogger struct{}

// NoOpLogger returns a logger that discards everything. Tests and optional
// dependencies use it in place of nil checks at every call site.
func NoOpLogger() Logger { return noopLogger{} }

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithContext(context.Context) Logger { return n }
