package til

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// newLoggerProvider builds the root go-logger instance the service hands
// child loggers out of, one per component.
func newLoggerProvider(cfg LoggingConfig) (*loggerProvider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("til: unsupported logging format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &loggerProvider{root: glog.NewLogger(options...)}, nil
}

type loggerProvider struct {
	root *glog.BaseLogger
}

func (p *loggerProvider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return interfaces.NoOpLogger()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return wrapLogger(p.root)
	}
	return wrapLogger(p.root.GetLogger(name))
}

func wrapLogger(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return interfaces.NoOpLogger()
	}
	return &loggerAdapter{inner: inner}
}

// loggerAdapter narrows go-logger's interface to the engine's contract.
type loggerAdapter struct {
	inner glog.Logger
}

func (l *loggerAdapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *loggerAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *loggerAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *loggerAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *loggerAdapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *loggerAdapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *loggerAdapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrapLogger(l.inner.WithContext(ctx))
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return ""
	}
}
