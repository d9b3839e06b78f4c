// Package til turns a directory of Markdown files with front-matter metadata
// into a searchable, browsable knowledge base backed by sqlite. The ingestion
// pipeline rebuilds the store wholesale from source on every run; the query
// layer serves read-only listings, detail views, full-text search, and topic
// navigation to whatever presentation layer sits on top.
package til

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-til/internal/ingest"
	"github.com/goliatone/go-til/internal/store"
	"github.com/goliatone/go-til/internal/watch"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// Re-exported result and error types so callers only import the root
// package.
type (
	Report          = ingest.Report
	SkippedFile     = ingest.SkippedFile
	Page            = store.Page
	Summary         = store.Summary
	Detail          = store.Detail
	Document        = store.Document
	RelatedDocument = store.RelatedDocument
	SearchHit       = store.SearchHit
	TopicCount      = store.TopicCount
	Stats           = store.Stats
	NotFoundError   = store.NotFoundError
)

var (
	ErrContentRootMissing = ingest.ErrContentRootMissing
	ErrDocumentNotFound   = store.ErrDocumentNotFound
	ErrTopicNotFound      = store.ErrTopicNotFound
)

// IsSearchQueryError reports whether err is a user-correctable search
// syntax failure rather than a system fault.
func IsSearchQueryError(err error) bool {
	return store.IsSearchQueryError(err)
}

// Service is the engine facade: one store handle, one ingestion pipeline,
// one query layer, all sharing the configured logger. Queries may run
// concurrently with each other and with a rebuild; the rebuild builds into
// a fresh database and swaps it in, so readers always see a complete data
// set.
type Service struct {
	cfg      Config
	loggers  interfaces.LoggerProvider
	store    *store.Store
	queries  *store.Queries
	pipeline *ingest.Pipeline

	// rebuildMu enforces single-flight rebuild semantics: two runs racing
	// on drop-and-repopulate would corrupt the swap.
	rebuildMu sync.Mutex
}

// New validates the configuration and wires the service.
func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
			WithTextCode("CONFIG_INVALID")
	}

	loggers, err := newLoggerProvider(cfg.Logging)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.Config{Dir: cfg.DatabaseDir})
	if err != nil {
		return nil, err
	}

	pipeline := ingest.New(ingest.Config{
		ContentDir:   cfg.ContentDir,
		Pattern:      cfg.Pattern,
		BaseURL:      cfg.BaseURL,
		DefaultTopic: cfg.DefaultTopic,
		Store:        st,
		Logger:       loggers.GetLogger("ingest"),
	})

	queries := store.NewQueries(st, store.SearchMarkers{
		Open:  cfg.Search.MarkOpen,
		Close: cfg.Search.MarkClose,
	}, cfg.PreviewLength, cfg.PerPage)

	return &Service{
		cfg:      cfg,
		loggers:  loggers,
		store:    st,
		queries:  queries,
		pipeline: pipeline,
	}, nil
}

// Rebuild runs one full ingestion pass. Concurrent callers serialize; each
// waits its turn and performs its own complete run.
func (s *Service) Rebuild(ctx context.Context) (*Report, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	return s.pipeline.Rebuild(ctx)
}

// Queries exposes the read-only accessor layer.
func (s *Service) Queries() *store.Queries {
	return s.queries
}

// Watch blocks, rebuilding after each quiet window that follows a change
// under the content root. The debounce window comes from Config.Watch.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := watch.New(watch.Config{
		Root:     s.cfg.ContentDir,
		Pattern:  s.cfg.Pattern,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.loggers.GetLogger("watch"),
		Trigger: func(ctx context.Context) error {
			_, err := s.Rebuild(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// URLs enumerates every page path for the static exporter.
func (s *Service) URLs(ctx context.Context) ([]string, error) {
	return s.queries.URLs(ctx)
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}
