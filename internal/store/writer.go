package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// InsertDocument persists one document row plus its topic rows and
// associations in a single transaction, so a mid-file failure can never
// leave topics_raw out of step with the join table. It reports whether an
// earlier row with the same slug was replaced.
//
// Slug collisions resolve last-writer-wins: the prior row and its
// associations are removed before the new row is written.
func (st *Staging) InsertDocument(ctx context.Context, doc *Document, topics []string) (bool, error) {
	replaced := false

	err := st.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		replaced, err = removeExisting(ctx, tx, doc.Slug)
		if err != nil {
			return err
		}

		res, err := tx.NewInsert().Model(doc).Exec(ctx)
		if err != nil {
			return fmt.Errorf("store: insert document %s: %w", doc.Slug, err)
		}
		if doc.ID == 0 {
			if id, err := res.LastInsertId(); err == nil {
				doc.ID = id
			}
		}

		for _, topic := range topics {
			topicID, err := ensureTopic(ctx, tx, topic)
			if err != nil {
				return err
			}
			if _, err := tx.NewInsert().
				Model(&DocumentTopic{DocumentID: doc.ID, TopicID: topicID}).
				Exec(ctx); err != nil {
				return fmt.Errorf("store: link document %s to topic %s: %w", doc.Slug, topic, err)
			}
		}
		return nil
	})

	return replaced, err
}

func removeExisting(ctx context.Context, tx bun.Tx, slug string) (bool, error) {
	var existing Document
	err := tx.NewSelect().
		Model(&existing).
		Column("id").
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: lookup slug %s: %w", slug, err)
	}

	if _, err := tx.NewDelete().
		Model((*DocumentTopic)(nil)).
		Where("document_id = ?", existing.ID).
		Exec(ctx); err != nil {
		return false, fmt.Errorf("store: clear associations for %s: %w", slug, err)
	}
	if _, err := tx.NewDelete().
		Model((*Document)(nil)).
		Where("id = ?", existing.ID).
		Exec(ctx); err != nil {
		return false, fmt.Errorf("store: replace document %s: %w", slug, err)
	}
	return true, nil
}

// ensureTopic inserts the topic on first encounter and returns its id.
// Topics only ever come into existence here, alongside an association.
func ensureTopic(ctx context.Context, tx bun.Tx, name string) (int64, error) {
	if _, err := tx.NewInsert().
		Model(&Topic{Name: name}).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("store: insert topic %s: %w", name, err)
	}

	var topic Topic
	if err := tx.NewSelect().
		Model(&topic).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx); err != nil {
		return 0, fmt.Errorf("store: lookup topic %s: %w", name, err)
	}
	return topic.ID, nil
}

// PruneOrphanTopics removes topics whose last association disappeared when
// a slug collision replaced their only document. A topic with zero documents
// must not exist.
func (st *Staging) PruneOrphanTopics(ctx context.Context) error {
	if _, err := st.db.ExecContext(ctx, `
		DELETE FROM topics
		WHERE id NOT IN (SELECT DISTINCT topic_id FROM document_topics)
	`); err != nil {
		return fmt.Errorf("store: prune orphan topics: %w", err)
	}
	return nil
}

// PopulateSearchIndex bulk-copies every document row into the FTS table.
// It runs once per rebuild, after all documents are inserted, which is what
// keeps the index row count in lockstep with the documents table.
func (st *Staging) PopulateSearchIndex(ctx context.Context) error {
	if _, err := st.db.ExecContext(ctx, `
		INSERT INTO search_index (rowid, title, raw_body, topics_raw)
		SELECT id, title, raw_body, topics_raw FROM documents
	`); err != nil {
		return fmt.Errorf("store: populate search index: %w", err)
	}
	return nil
}

// Counts reports the document and topic totals for the rebuild report.
func (st *Staging) Counts(ctx context.Context) (documents int, topics int, err error) {
	documents, err = st.db.NewSelect().Model((*Document)(nil)).Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("store: count documents: %w", err)
	}
	topics, err = st.db.NewSelect().Model((*Topic)(nil)).Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("store: count topics: %w", err)
	}
	return documents, topics, nil
}
