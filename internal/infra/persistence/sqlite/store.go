// Package sqlite provides the persistence bridge: a snapshotting store that
// wraps the in-memory engine and mirrors every committed state change into a
// local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"bizflow/internal/infra/persistence/memory"
	"bizflow/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
// It snapshots the full state after every successful transaction.
// Persistence is best-effort: a failed snapshot write never rolls back the
// committed in-memory state; the failure is wrapped in domain.PersistError
// and retained for inspection.
type Store struct {
	*memory.Store
	db      *sql.DB
	mu      sync.Mutex
	path    string
	lastErr error
}

// Option configures the store at construction.
type Option func(*options)

type options struct {
	storeOpts []memory.Option
}

// WithStoreOptions forwards options to the wrapped in-memory store.
func WithStoreOptions(opts ...memory.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

var buckets = []string{"products", "sales", "notifications"}

// NewStore constructs a snapshotting SQLite-backed persistent store. When the
// stored document is absent, malformed, or holds no products, the store is
// hydrated from the seed catalog instead of an empty state.
func NewStore(path string, engine *domain.RulesEngine, opts ...Option) (*Store, error) {
	if path == "" {
		path = "bizflow.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	ms := memory.NewStore(engine, cfg.storeOpts...)
	s := &Store{Store: ms, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load hydrates the memory store from the state table, falling back to the
// seed catalog when nothing usable is stored. Decode failures are treated as
// a missing document, not surfaced as errors.
func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	payloads := make(map[string][]byte)
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}

	snapshot, ok := decodeSnapshot(payloads)
	if !ok || len(snapshot.Products) == 0 {
		s.ImportState(domain.Snapshot{Products: domain.SeedProducts()})
		return nil
	}
	s.ImportState(snapshot)
	return nil
}

func decodeSnapshot(payloads map[string][]byte) (domain.Snapshot, bool) {
	if len(payloads) == 0 {
		return domain.Snapshot{}, false
	}
	var snapshot domain.Snapshot
	for bucket, payload := range payloads {
		var err error
		switch bucket {
		case "products":
			err = json.Unmarshal(payload, &snapshot.Products)
		case "sales":
			err = json.Unmarshal(payload, &snapshot.Sales)
		case "notifications":
			err = json.Unmarshal(payload, &snapshot.Notifications)
		}
		if err != nil {
			return domain.Snapshot{}, false
		}
	}
	return snapshot, true
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		var data []byte
		switch bucket {
		case "products":
			data, err = json.Marshal(snapshot.Products)
		case "sales":
			data, err = json.Marshal(snapshot.Sales)
		case "notifications":
			data, err = json.Marshal(snapshot.Notifications)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// RunInTransaction applies the provided function within a transaction, then
// snapshots state to SQLite if successful. A snapshot write failure is
// returned as domain.PersistError; the in-memory commit stands regardless.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		s.mu.Lock()
		s.lastErr = pErr
		s.mu.Unlock()
		return res, domain.PersistError{Err: pErr}
	}
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	return res, nil
}

// LastPersistError reports the most recent snapshot write failure, or nil.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
