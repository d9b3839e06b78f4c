package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-til/internal/markdown"
	"github.com/goliatone/go-til/internal/store"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// ErrContentRootMissing reports a rebuild against a content root that does
// not exist. It aborts the run and leaves the prior store state untouched.
var ErrContentRootMissing = errors.New("ingest: content root missing")

// Config wires the pipeline's collaborators and content conventions.
type Config struct {
	// ContentDir is the root directory scanned for Markdown sources.
	ContentDir string
	// Pattern filters discovered files; defaults to "*.md".
	Pattern string
	// BaseURL prefixes rewritten wikilink anchors.
	BaseURL string
	// DefaultTopic substitutes for documents carrying no topics. Empty
	// disables the substitution and leaves such documents untagged.
	DefaultTopic string

	Store  *store.Store
	Logger interfaces.Logger
}

// Pipeline rebuilds the store from the content directory: discover, reset
// into a fresh staging database, process each file independently, populate
// the search index, swap the staging database in.
//
// Rebuild is not safe for concurrent invocation; the owning service
// serializes runs.
type Pipeline struct {
	cfg      Config
	renderer *markdown.Renderer
	logger   interfaces.Logger
}

// New constructs a Pipeline. The content root is only checked at Rebuild
// time so a service can be wired before its content exists.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = interfaces.NoOpLogger()
	}
	return &Pipeline{
		cfg:      cfg,
		renderer: markdown.NewRenderer(markdown.RendererConfig{BaseURL: cfg.BaseURL}),
		logger:   logger,
	}
}

// Rebuild performs one full ingestion run. Per-file failures are logged,
// recorded on the report, and do not abort the run; failures outside the
// per-file loop abort it and leave the live store untouched.
func (p *Pipeline) Rebuild(ctx context.Context) (*Report, error) {
	started := time.Now()
	runID := strings.Split(uuid.NewString(), "-")[0]
	logger := p.logger.WithContext(ctx)

	info, err := os.Stat(p.cfg.ContentDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrContentRootMissing, p.cfg.ContentDir)
	}

	loader := markdown.NewLoader(os.DirFS(p.cfg.ContentDir), p.cfg.Pattern)
	paths, err := loader.Discover(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("rebuild started", "run_id", runID, "content_dir", p.cfg.ContentDir, "files", len(paths))
	if len(paths) == 0 {
		logger.Warn("no markdown files found; content root is likely misconfigured",
			"run_id", runID, "content_dir", p.cfg.ContentDir)
	}

	staging, err := p.cfg.Store.BeginRebuild(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID}
	for _, path := range paths {
		if err := p.processFile(ctx, loader, staging, path, report); err != nil {
			logger.Warn("skipping file", "run_id", runID, "path", path, "error", err)
			report.Skipped = append(report.Skipped, SkippedFile{Path: path, Reason: err.Error()})
		}
	}

	if err := staging.PruneOrphanTopics(ctx); err != nil {
		staging.Abort()
		return nil, err
	}

	if err := staging.PopulateSearchIndex(ctx); err != nil {
		staging.Abort()
		return nil, err
	}

	documents, topics, err := staging.Counts(ctx)
	if err != nil {
		staging.Abort()
		return nil, err
	}
	report.Documents = documents
	report.Topics = topics

	if err := staging.Commit(); err != nil {
		staging.Abort()
		return nil, err
	}

	report.Duration = time.Since(started)
	logger.Info("rebuild completed",
		"run_id", runID,
		"documents", report.Documents,
		"topics", report.Topics,
		"skipped", len(report.Skipped),
		"duration", report.Duration.String(),
	)
	return report, nil
}

// processFile runs the per-file pipeline stage: load, normalize, render,
// persist. Every error returned here is a per-file condition.
func (p *Pipeline) processFile(ctx context.Context, loader *markdown.Loader, staging *store.Staging, path string, report *Report) error {
	source, err := loader.Load(ctx, path)
	if err != nil {
		return err
	}

	normalized := markdown.Normalize(source.Path, source.FrontMatter, source.Body, source.Info)
	if normalized.CreatedApprox {
		report.ApproxCreationDates++
		p.logger.Debug("creation time approximated from modification time", "path", path)
	}

	topics := normalized.Topics
	if len(topics) == 0 && p.cfg.DefaultTopic != "" {
		topics = []string{p.cfg.DefaultTopic}
	}

	html, err := p.renderer.Render(source.Body)
	if err != nil {
		return err
	}

	doc := &store.Document{
		Slug:         normalized.Slug,
		Title:        normalized.Title,
		RawBody:      string(source.Body),
		RenderedHTML: string(html),
		CreatedFS:    normalized.CreatedFS,
		ModifiedFS:   normalized.ModifiedFS,
		CreatedFM:    normalized.CreatedFM,
		TopicsRaw:    strings.Join(topics, ","),
	}

	replaced, err := staging.InsertDocument(ctx, doc, topics)
	if err != nil {
		return err
	}
	if replaced {
		// Last writer wins; traversal order is sorted, so the outcome is
		// deterministic for a fixed source set.
		p.logger.Warn("slug collision, replacing earlier document", "slug", doc.Slug, "path", path)
		report.Collisions = append(report.Collisions, doc.Slug)
	}

	return nil
}
