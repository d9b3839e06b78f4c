package store

import "github.com/uptrace/bun"

// Document is one ingested unit of content. Rows are only ever written
// during a rebuild; the query layer treats them as immutable.
//
// All date columns hold `YYYY-MM-DD HH:MM:SS` strings (or verbatim free-text
// frontmatter values), so COALESCE plus lexicographic ordering yields
// chronological ordering.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID           int64  `bun:"id,pk,autoincrement"    json:"id"`
	Slug         string `bun:"slug,notnull"           json:"slug"`
	Title        string `bun:"title,notnull"          json:"title"`
	RawBody      string `bun:"raw_body"               json:"raw_body"`
	RenderedHTML string `bun:"rendered_html"          json:"rendered_html"`
	CreatedFS    string `bun:"created_fs,notnull"     json:"created_fs"`
	ModifiedFS   string `bun:"modified_fs,notnull"    json:"modified_fs"`
	CreatedFM    string `bun:"created_fm,nullzero"    json:"created_fm,omitempty"`
	TopicsRaw    string `bun:"topics_raw"             json:"topics_raw"`
}

// EffectiveCreated is the date used for sorting and display: the explicit
// frontmatter date when present, else the filesystem-derived date.
func (d *Document) EffectiveCreated() string {
	if d.CreatedFM != "" {
		return d.CreatedFM
	}
	return d.CreatedFS
}

// Topic is a named tag. Topics exist only alongside at least one
// association; they are created on first encounter during ingestion.
type Topic struct {
	bun.BaseModel `bun:"table:topics,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull"        json:"name"`
}

// DocumentTopic is the many-to-many join between documents and topics.
type DocumentTopic struct {
	bun.BaseModel `bun:"table:document_topics,alias:dt"`

	DocumentID int64 `bun:"document_id,notnull" json:"document_id"`
	TopicID    int64 `bun:"topic_id,notnull"    json:"topic_id"`
}
