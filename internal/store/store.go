package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const liveFilename = "til.db"

// Config controls where the store keeps its database.
type Config struct {
	// Dir is the directory holding the sqlite file. Empty selects an
	// in-memory database, which is what the test suites use.
	Dir string
}

// Store owns the live database handle. Rebuilds populate a fresh database
// and swap it in atomically, so concurrent readers always observe either the
// previous complete data set or the new one, never a half-built mix.
type Store struct {
	cfg Config

	mu   sync.RWMutex
	live *bun.DB

	// retired is the handle replaced by the most recent swap. It stays open
	// until the next swap (or Close) so readers that resolved it just before
	// the swap finish against the old complete data instead of a closed
	// database.
	retired *bun.DB
}

// Open attaches to the live database file, creating an empty schema when no
// database exists yet. Queries against a store that was never rebuilt return
// empty results, not errors.
func Open(cfg Config) (*Store, error) {
	s := &Store{cfg: cfg}

	if cfg.Dir == "" {
		db, err := openDatabase(memoryDSN(fmt.Sprintf("til-live-%p", s)))
		if err != nil {
			return nil, err
		}
		if err := applySchema(db); err != nil {
			db.Close()
			return nil, err
		}
		s.live = db
		return s, nil
	}

	path := filepath.Join(cfg.Dir, liveFilename)
	fresh := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fresh = true
	}

	db, err := openDatabase(fileDSN(path))
	if err != nil {
		return nil, err
	}
	if fresh {
		if err := applySchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: initialize %s: %w", path, err)
		}
	}

	s.live = db
	return s, nil
}

// DB returns the current live handle. The handle remains valid for queries
// already running when a rebuild swaps in a replacement.
func (s *Store) DB() *bun.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Close releases the live handle and any handle retired by the last swap.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retired != nil {
		s.retired.Close()
		s.retired = nil
	}
	if s.live == nil {
		return nil
	}
	err := s.live.Close()
	s.live = nil
	return err
}

// Staging is a fresh, schema-initialized database a single rebuild run
// writes into. Commit swaps it in as the live database; Abort discards it
// and leaves the prior store state untouched.
type Staging struct {
	store *Store
	db    *bun.DB
	path  string
}

// BeginRebuild creates the staging database for a rebuild run. runID keeps
// concurrent-run artifacts distinguishable on disk and in logs, even though
// rebuilds themselves are serialized by the caller.
func (s *Store) BeginRebuild(ctx context.Context, runID string) (*Staging, error) {
	var (
		db   *bun.DB
		path string
		err  error
	)

	if s.cfg.Dir == "" {
		db, err = openDatabase(memoryDSN("til-staging-" + runID))
	} else {
		path = filepath.Join(s.cfg.Dir, fmt.Sprintf("til.%s.db", runID))
		db, err = openDatabase(fileDSN(path))
	}
	if err != nil {
		return nil, fmt.Errorf("store: begin rebuild: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		if path != "" {
			os.Remove(path)
		}
		return nil, fmt.Errorf("store: begin rebuild: %w", err)
	}

	return &Staging{store: s, db: db, path: path}, nil
}

// DB exposes the staging handle to the ingestion writer.
func (st *Staging) DB() *bun.DB {
	return st.db
}

// Commit promotes the staging database to live. In file mode the staging
// file is renamed over the live file and reopened; the rename is atomic.
// The replaced handle is parked as retired rather than closed, so a reader
// that resolved it just before the swap still completes against the old
// complete data set; it is closed on the next swap.
func (st *Staging) Commit() error {
	fresh := st.db

	if st.path != "" {
		if err := st.db.Close(); err != nil {
			return fmt.Errorf("store: commit rebuild: %w", err)
		}
		live := filepath.Join(st.store.cfg.Dir, liveFilename)
		if err := os.Rename(st.path, live); err != nil {
			return fmt.Errorf("store: commit rebuild: %w", err)
		}
		reopened, err := openDatabase(fileDSN(live))
		if err != nil {
			return fmt.Errorf("store: commit rebuild: %w", err)
		}
		fresh = reopened
	}

	st.store.mu.Lock()
	previous := st.store.live
	drained := st.store.retired
	st.store.live = fresh
	st.store.retired = previous
	st.store.mu.Unlock()

	if drained != nil {
		drained.Close()
	}
	return nil
}

// Abort discards the staging database.
func (st *Staging) Abort() {
	st.db.Close()
	if st.path != "" {
		os.Remove(st.path)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// Shared-cache memory databases and renamed files both require the pool
	// to hold a single long-lived connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func applySchema(db *bun.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}

func fileDSN(path string) string {
	return fmt.Sprintf("file:%s?_fk=1", path)
}

func memoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
}
