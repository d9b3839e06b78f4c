package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestOpenEmptyMemoryStore(t *testing.T) {
	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	q := NewQueries(s, SearchMarkers{}, 0, 0)
	summaries, total, err := q.List(context.Background(), Page{Limit: 10})
	if err != nil {
		t.Fatalf("list on empty store: %v", err)
	}
	if total != 0 || len(summaries) != 0 {
		t.Fatalf("expected empty store, got %d rows (total %d)", len(summaries), total)
	}
}

func TestOpenCreatesSchemaOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "til.db")); err != nil {
		t.Fatalf("expected live database file: %v", err)
	}

	q := NewQueries(s, SearchMarkers{}, 0, 0)
	if _, _, err := q.List(context.Background(), Page{Limit: 1}); err != nil {
		t.Fatalf("list against fresh file store: %v", err)
	}
}

func TestCommitSwapsLiveDatabase(t *testing.T) {
	ctx := context.Background()

	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	staging, err := s.BeginRebuild(ctx, "run-1")
	if err != nil {
		t.Fatalf("begin rebuild: %v", err)
	}
	doc := &Document{
		Slug:       "first",
		Title:      "First",
		RawBody:    "body",
		CreatedFS:  "2024-01-01 00:00:00",
		ModifiedFS: "2024-01-01 00:00:00",
		TopicsRaw:  "go",
	}
	if _, err := staging.InsertDocument(ctx, doc, []string{"go"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := staging.PopulateSearchIndex(ctx); err != nil {
		t.Fatalf("populate index: %v", err)
	}
	if err := staging.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	q := NewQueries(s, SearchMarkers{}, 0, 0)
	_, total, err := q.List(ctx, Page{Limit: 10})
	if err != nil {
		t.Fatalf("list after commit: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 document after commit, got %d", total)
	}
}

func TestCommitRenamesStagingFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	staging, err := s.BeginRebuild(ctx, "run-1")
	if err != nil {
		t.Fatalf("begin rebuild: %v", err)
	}
	doc := &Document{
		Slug:       "first",
		Title:      "First",
		CreatedFS:  "2024-01-01 00:00:00",
		ModifiedFS: "2024-01-01 00:00:00",
	}
	if _, err := staging.InsertDocument(ctx, doc, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := staging.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "til.run-1.db")); !os.IsNotExist(err) {
		t.Fatalf("expected staging file renamed away, stat err: %v", err)
	}

	q := NewQueries(s, SearchMarkers{}, 0, 0)
	_, total, err := q.List(ctx, Page{Limit: 10})
	if err != nil {
		t.Fatalf("list after commit: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 document after file swap, got %d", total)
	}
}

func TestReadersSeeCompleteDataAcrossCommit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	commitDocs := func(runID string, slugs []string) {
		t.Helper()
		staging, err := s.BeginRebuild(ctx, runID)
		if err != nil {
			t.Fatalf("begin rebuild %s: %v", runID, err)
		}
		for _, slug := range slugs {
			doc := &Document{
				Slug:       slug,
				Title:      slug,
				CreatedFS:  "2024-01-01 00:00:00",
				ModifiedFS: "2024-01-01 00:00:00",
			}
			if _, err := staging.InsertDocument(ctx, doc, nil); err != nil {
				t.Fatalf("insert %s: %v", slug, err)
			}
		}
		if err := staging.Commit(); err != nil {
			t.Fatalf("commit %s: %v", runID, err)
		}
	}

	commitDocs("run-1", []string{"one"})

	// Hammer the query layer while a rebuild swaps the database underneath
	// it. Every read must observe either the old complete count or the new
	// complete count, never an intermediate and never a closed handle.
	q := NewQueries(s, SearchMarkers{}, 0, 0)
	stop := make(chan struct{})
	violations := make(chan string, 1)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, total, err := q.List(ctx, Page{Limit: 10})
				if err != nil {
					select {
					case violations <- fmt.Sprintf("list during swap: %v", err):
					default:
					}
					return
				}
				if total != 1 && total != 3 {
					select {
					case violations <- fmt.Sprintf("partial data visible: total %d", total):
					default:
					}
					return
				}
			}
		}()
	}

	commitDocs("run-2", []string{"two", "three", "four"})
	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()

	select {
	case msg := <-violations:
		t.Fatalf("reader observed inconsistent state: %s", msg)
	default:
	}

	_, total, err := q.List(ctx, Page{Limit: 10})
	if err != nil {
		t.Fatalf("list after swap: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected new data set after swap, got %d documents", total)
	}
}

func TestAbortLeavesLiveUntouched(t *testing.T) {
	ctx := context.Background()

	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	// Commit one document first so the live store has known contents.
	staging, err := s.BeginRebuild(ctx, "run-1")
	if err != nil {
		t.Fatalf("begin rebuild: %v", err)
	}
	doc := &Document{
		Slug:       "keep",
		Title:      "Keep",
		CreatedFS:  "2024-01-01 00:00:00",
		ModifiedFS: "2024-01-01 00:00:00",
	}
	if _, err := staging.InsertDocument(ctx, doc, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := staging.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// A second run writes more rows but aborts.
	aborted, err := s.BeginRebuild(ctx, "run-2")
	if err != nil {
		t.Fatalf("begin rebuild: %v", err)
	}
	extra := &Document{
		Slug:       "discard",
		Title:      "Discard",
		CreatedFS:  "2024-02-01 00:00:00",
		ModifiedFS: "2024-02-01 00:00:00",
	}
	if _, err := aborted.InsertDocument(ctx, extra, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	aborted.Abort()

	q := NewQueries(s, SearchMarkers{}, 0, 0)
	summaries, total, err := q.List(ctx, Page{Limit: 10})
	if err != nil {
		t.Fatalf("list after abort: %v", err)
	}
	if total != 1 || summaries[0].Slug != "keep" {
		t.Fatalf("expected only committed document to survive abort, got %+v", summaries)
	}
}
