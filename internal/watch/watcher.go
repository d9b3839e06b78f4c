package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-til/pkg/interfaces"
)

// Config wires the watcher to a content root and a rebuild trigger.
type Config struct {
	// Root is the content directory to watch, recursively.
	Root string
	// Pattern filters events by base name; defaults to "*.md".
	Pattern string
	// Debounce is the quiet window events must clear before a rebuild
	// fires; defaults to two seconds.
	Debounce time.Duration
	// Trigger runs one rebuild. Invocations are serialized; a burst of
	// changes mid-rebuild collapses into a single follow-up invocation.
	Trigger func(ctx context.Context) error

	Logger interfaces.Logger
}

// Watcher converts filesystem change events into debounced, single-flight
// rebuild triggers.
type Watcher struct {
	cfg    Config
	logger interfaces.Logger
}

// New validates the configuration and returns a Watcher.
func New(cfg Config) (*Watcher, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("watch: root is required")
	}
	if cfg.Trigger == nil {
		return nil, fmt.Errorf("watch: trigger is required")
	}
	if strings.TrimSpace(cfg.Pattern) == "" {
		cfg.Pattern = "*.md"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = interfaces.NoOpLogger()
	}
	return &Watcher{cfg: cfg, logger: logger}, nil
}

// Run blocks until ctx is done, rebuilding after each quiet window that
// follows a relevant change.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.cfg.Root); err != nil {
		return err
	}

	deb := newDebouncer(w.cfg.Debounce)
	done := make(chan error, 1)
	go func() {
		done <- deb.Run(ctx, func(ctx context.Context) {
			if err := w.cfg.Trigger(ctx); err != nil {
				w.logger.Error("rebuild after change failed", "error", err)
			}
		})
	}()

	w.logger.Info("watching for changes", "root", w.cfg.Root, "debounce", deb.window.String())

	for {
		select {
		case <-ctx.Done():
			return <-done
		case event, ok := <-fsw.Events:
			if !ok {
				return <-done
			}
			w.handleEvent(fsw, deb, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return <-done
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, deb *debouncer, event fsnotify.Event) {
	// New directories need their own watch before files inside them can be
	// observed.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(fsw, event.Name); err != nil {
				w.logger.Warn("watch new directory failed", "path", event.Name, "error", err)
			}
			return
		}
	}

	match, err := filepath.Match(w.cfg.Pattern, filepath.Base(event.Name))
	if err != nil || !match {
		return
	}
	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
		deb.Notify()
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch: walk %s: %w", path, err)
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				return fmt.Errorf("watch: add %s: %w", path, err)
			}
		}
		return nil
	})
}
