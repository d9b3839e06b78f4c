package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const effectiveCreatedExpr = "COALESCE(d.created_fm, d.created_fs)"

// Page bounds a listing query. A zero Limit falls back to the query
// layer's configured page size. Order applies to the effective creation
// date; anything but "asc" sorts newest first.
type Page struct {
	Limit  int
	Offset int
	Order  string
}

func (p Page) direction() string {
	if strings.EqualFold(p.Order, "asc") {
		return "ASC"
	}
	return "DESC"
}

// Summary is one row of a listing page: document identity plus the
// read-time projections the presentation layer renders directly.
type Summary struct {
	ID          int64
	Slug        string
	Title       string
	TopicsRaw   string
	Created     string
	CreatedFS   string
	CreatedFM   string
	ModifiedFS  string
	Preview     string
	WasModified bool
}

// Detail is a single-document fetch: the full row plus its ordered topic
// names.
type Detail struct {
	Document Document
	Topics   []string
}

// RelatedDocument is a minimal reference to a document sharing a topic.
type RelatedDocument struct {
	Slug  string `bun:"slug"`
	Title string `bun:"title"`
}

// SearchHit is one ranked full-text match with a highlighted snippet.
type SearchHit struct {
	Slug    string
	Title   string
	Created string
	Snippet string
}

// TopicCount pairs a topic with its document count.
type TopicCount struct {
	Name  string `bun:"name"`
	Count int    `bun:"count"`
}

// Stats summarizes the store for the stats view.
type Stats struct {
	TotalDocuments int
	Topics         []TopicCount
	FirstCreated   string
	LastCreated    string
}

// SearchMarkers wrap matched terms inside search snippets.
type SearchMarkers struct {
	Open  string
	Close string
}

// DefaultPageSize bounds listing and search pages when the caller leaves
// Page.Limit unset.
const DefaultPageSize = 20

// Queries is the read-only accessor layer over a Store. Methods are safe
// for concurrent use; each resolves the live handle once so a rebuild
// swapping databases mid-call cannot split a single query across stores.
type Queries struct {
	store   *Store
	markers SearchMarkers
	budget  int
	perPage int
}

// NewQueries binds a query layer to the store. Zero-value markers default
// to <mark> tags, the budget to PreviewBudget, the page size to
// DefaultPageSize.
func NewQueries(s *Store, markers SearchMarkers, previewBudget, perPage int) *Queries {
	if markers.Open == "" {
		markers = SearchMarkers{Open: "<mark>", Close: "</mark>"}
	}
	if previewBudget <= 0 {
		previewBudget = PreviewBudget
	}
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return &Queries{store: s, markers: markers, budget: previewBudget, perPage: perPage}
}

// pageLimit resolves the effective page size so listings and search agree
// on what a zero limit means.
func (q *Queries) pageLimit(page Page) int {
	if page.Limit > 0 {
		return page.Limit
	}
	return q.perPage
}

// List returns one page of document summaries ordered by effective creation
// date, plus the total document count.
func (q *Queries) List(ctx context.Context, page Page) ([]Summary, int, error) {
	db := q.store.DB()

	var docs []Document
	total, err := db.NewSelect().
		Model(&docs).
		OrderExpr(effectiveCreatedExpr+" "+page.direction()).
		Limit(q.pageLimit(page)).
		Offset(page.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list documents: %w", err)
	}

	return q.summarize(docs), total, nil
}

// ListByTopic returns one page of summaries for a known topic. A topic name
// that was never created yields ErrTopicNotFound; a known topic whose page
// is past the end yields an empty page.
func (q *Queries) ListByTopic(ctx context.Context, topic string, page Page) ([]Summary, int, error) {
	db := q.store.DB()

	exists, err := db.NewSelect().
		Model((*Topic)(nil)).
		Where("name = ?", topic).
		Exists(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("store: check topic %s: %w", topic, err)
	}
	if !exists {
		return nil, 0, &NotFoundError{Resource: "topic", Key: topic}
	}

	var docs []Document
	total, err := db.NewSelect().
		Model(&docs).
		Join("JOIN document_topics AS dt ON dt.document_id = d.id").
		Join("JOIN topics AS t ON t.id = dt.topic_id").
		Where("t.name = ?", topic).
		OrderExpr(effectiveCreatedExpr+" "+page.direction()).
		Limit(q.pageLimit(page)).
		Offset(page.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list topic %s: %w", topic, err)
	}

	return q.summarize(docs), total, nil
}

// Get fetches a single document by slug together with its topic names.
func (q *Queries) Get(ctx context.Context, slug string) (*Detail, error) {
	db := q.store.DB()

	var doc Document
	err := db.NewSelect().
		Model(&doc).
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "document", Key: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document %s: %w", slug, err)
	}

	var topics []string
	if err := db.NewSelect().
		Model((*Topic)(nil)).
		Column("t.name").
		Join("JOIN document_topics AS dt ON dt.topic_id = t.id").
		Where("dt.document_id = ?", doc.ID).
		OrderExpr("t.name").
		Scan(ctx, &topics); err != nil {
		return nil, fmt.Errorf("store: topics for %s: %w", slug, err)
	}

	return &Detail{Document: doc, Topics: topics}, nil
}

// Related returns up to max documents sharing at least one topic with the
// target, excluding the target itself, ordered by title.
func (q *Queries) Related(ctx context.Context, slug string, max int) ([]RelatedDocument, error) {
	detail, err := q.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		max = 5
	}

	db := q.store.DB()
	var related []RelatedDocument
	if err := db.NewSelect().
		TableExpr("documents AS d").
		ColumnExpr("DISTINCT d.slug, d.title").
		Join("JOIN document_topics AS dt ON dt.document_id = d.id").
		Join("JOIN document_topics AS shared ON shared.topic_id = dt.topic_id").
		Where("shared.document_id = ?", detail.Document.ID).
		Where("d.id != ?", detail.Document.ID).
		OrderExpr("d.title").
		Limit(max).
		Scan(ctx, &related); err != nil {
		return nil, fmt.Errorf("store: related documents for %s: %w", slug, err)
	}
	return related, nil
}

// Search runs a full-text match ordered by index-native relevance.
// Snippets carry roughly thirty tokens of context with matched terms
// wrapped in the configured markers. Malformed query syntax surfaces as a
// user-correctable error.
func (q *Queries) Search(ctx context.Context, query string, page Page) ([]SearchHit, int, error) {
	db := q.store.DB()

	var total int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_index WHERE search_index MATCH ?`, query,
	).Scan(&total); err != nil {
		return nil, 0, wrapSearchError(err, query)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT d.slug, d.title, %s AS created,
		       snippet(search_index, -1, ?, ?, '...', 30) AS snippet
		FROM search_index
		JOIN documents AS d ON search_index.rowid = d.id
		WHERE search_index MATCH ?
		ORDER BY rank
		LIMIT ? OFFSET ?
	`, effectiveCreatedExpr), q.markers.Open, q.markers.Close, query, q.pageLimit(page), page.Offset)
	if err != nil {
		return nil, 0, wrapSearchError(err, query)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.Slug, &hit.Title, &hit.Created, &hit.Snippet); err != nil {
			return nil, 0, fmt.Errorf("store: scan search hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapSearchError(err, query)
	}

	return hits, total, nil
}

// TopicCloud returns every topic with its document count, ordered by name.
func (q *Queries) TopicCloud(ctx context.Context) ([]TopicCount, error) {
	db := q.store.DB()

	var cloud []TopicCount
	if err := db.NewSelect().
		TableExpr("topics AS t").
		ColumnExpr("t.name AS name, COUNT(*) AS count").
		Join("JOIN document_topics AS dt ON dt.topic_id = t.id").
		GroupExpr("t.name").
		OrderExpr("t.name ASC").
		Scan(ctx, &cloud); err != nil {
		return nil, fmt.Errorf("store: topic cloud: %w", err)
	}
	return cloud, nil
}

// TopicStats returns per-topic counts ordered by count descending.
func (q *Queries) TopicStats(ctx context.Context) ([]TopicCount, error) {
	db := q.store.DB()

	var stats []TopicCount
	if err := db.NewSelect().
		TableExpr("topics AS t").
		ColumnExpr("t.name AS name, COUNT(*) AS count").
		Join("JOIN document_topics AS dt ON dt.topic_id = t.id").
		GroupExpr("t.name").
		OrderExpr("count DESC").
		Scan(ctx, &stats); err != nil {
		return nil, fmt.Errorf("store: topic stats: %w", err)
	}
	return stats, nil
}

// Stats summarizes the store: totals, per-topic counts, and the effective
// date range.
func (q *Queries) Stats(ctx context.Context) (*Stats, error) {
	db := q.store.DB()

	total, err := db.NewSelect().Model((*Document)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: count documents: %w", err)
	}

	topics, err := q.TopicStats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalDocuments: total, Topics: topics}
	if total > 0 {
		if err := db.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT MIN(%[1]s), MAX(%[1]s) FROM documents AS d`, effectiveCreatedExpr,
		)).Scan(&stats.FirstCreated, &stats.LastCreated); err != nil {
			return nil, fmt.Errorf("store: date range: %w", err)
		}
	}
	return stats, nil
}

// Recent returns the newest documents by effective date, for feed
// generation.
func (q *Queries) Recent(ctx context.Context, limit int) ([]Document, error) {
	db := q.store.DB()

	var docs []Document
	if err := db.NewSelect().
		Model(&docs).
		OrderExpr(effectiveCreatedExpr + " DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: recent documents: %w", err)
	}
	return docs, nil
}

// URLs enumerates every page path the static exporter walks: the index,
// one page per document and topic, plus the fixed stats and feed routes.
func (q *Queries) URLs(ctx context.Context) ([]string, error) {
	db := q.store.DB()

	urls := []string{"/"}

	var slugs []string
	if err := db.NewSelect().
		Model((*Document)(nil)).
		Column("d.slug").
		OrderExpr(effectiveCreatedExpr + " DESC").
		Scan(ctx, &slugs); err != nil {
		return nil, fmt.Errorf("store: document urls: %w", err)
	}
	for _, slug := range slugs {
		urls = append(urls, "/note/"+slug)
	}

	var names []string
	if err := db.NewSelect().
		Model((*Topic)(nil)).
		Column("t.name").
		OrderExpr("t.name").
		Scan(ctx, &names); err != nil {
		return nil, fmt.Errorf("store: topic urls: %w", err)
	}
	for _, name := range names {
		urls = append(urls, "/topic/"+name)
	}

	return append(urls, "/stats", "/feed.atom"), nil
}

func (q *Queries) summarize(docs []Document) []Summary {
	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		created := doc.EffectiveCreated()
		summaries = append(summaries, Summary{
			ID:          doc.ID,
			Slug:        doc.Slug,
			Title:       doc.Title,
			TopicsRaw:   doc.TopicsRaw,
			Created:     created,
			CreatedFS:   doc.CreatedFS,
			CreatedFM:   doc.CreatedFM,
			ModifiedFS:  doc.ModifiedFS,
			Preview:     Preview(doc.RawBody, doc.RenderedHTML, q.budget),
			WasModified: WasModified(created, doc.ModifiedFS),
		})
	}
	return summaries
}
