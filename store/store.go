// Package store provides a SQLite implementation of the transaction Sink.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/etnz/tdasync"
	"github.com/etnz/tdasync/record"

	// Go SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// Operations for consistent error reporting.
const (
	opOpen    = "sqlite.Open"
	opLatest  = "sqlite.LatestTransactionTimestamp"
	opPersist = "sqlite.Persist"
	opCount   = "sqlite.Count"
)

// DefaultTable is the default name of the transaction table.
const DefaultTable = "transactions"

var (
	ErrStoreClosed = errors.New("store is closed")
	tableNameRE    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Config holds the configuration of a Store.
type Config struct {
	// DataSourceName is the connection string for the SQLite database,
	// e.g. "file:tda.db" or ":memory:".
	DataSourceName string
	// Table is the name of the transaction table, DefaultTable if empty.
	Table string
}

// Store is a SQLite transaction store.
//
// Each record is stored raw, next to its id, canonical timestamp, type and
// net amount. Records are unique by id, persisting a known record is a no-op.
type Store struct {
	db     *sql.DB
	table  string
	closed bool
}

// Compile-time check to ensure Store satisfies the Sink interface
var _ tdasync.Sink = (*Store)(nil)

// Open opens (and creates if needed) the store described by config.
func Open(ctx context.Context, config Config) (*Store, error) {
	if config.DataSourceName == "" {
		return nil, tdasync.NewStoreError(opOpen, errors.New("DataSourceName is required"))
	}
	if config.Table == "" {
		config.Table = DefaultTable
	}
	if !tableNameRE.MatchString(config.Table) {
		return nil, tdasync.NewStoreError(opOpen, fmt.Errorf("invalid table name %q", config.Table))
	}

	db, err := sql.Open("sqlite3", config.DataSourceName)
	if err != nil {
		return nil, tdasync.NewStoreError(opOpen, fmt.Errorf("failed to open sqlite database: %w", err))
	}
	// A single connection: the synchronization is sequential, and an
	// in-memory database only lives in its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, tdasync.NewStoreError(opOpen, fmt.Errorf("failed to connect to sqlite database: %w", err))
	}

	s := &Store{db: db, table: config.Table}
	if err := s.setupSchema(ctx); err != nil {
		db.Close()
		return nil, tdasync.NewStoreError(opOpen, fmt.Errorf("failed to setup database schema: %w", err))
	}
	log.Printf("opened transaction store %s (table %s)", config.DataSourceName, config.Table)
	return s, nil
}

// setupSchema creates the transaction table if it doesn't exist.
func (s *Store) setupSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS %[1]s (
        id               TEXT PRIMARY KEY,
        transaction_time TEXT NOT NULL,
        transaction_date TEXT NOT NULL,
        type             TEXT,
        net_amount       TEXT,
        raw              TEXT NOT NULL,
        created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_%[1]s_transaction_time ON %[1]s (transaction_time);
    `, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// LatestTransactionTimestamp returns the timestamp of the most recent transaction.
func (s *Store) LatestTransactionTimestamp(ctx context.Context) (time.Time, bool, error) {
	if s.closed {
		return time.Time{}, false, tdasync.NewStoreError(opLatest, ErrStoreClosed)
	}
	var raw string
	query := fmt.Sprintf(`SELECT transaction_date FROM %s ORDER BY transaction_time DESC LIMIT 1`, s.table)
	err := s.db.QueryRowContext(ctx, query).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, tdasync.NewStoreError(opLatest, err)
	}
	latest, err := tdasync.DecodeTimestamp(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid stored transaction date: %w", err)
	}
	return latest, true, nil
}

// Persist stores the batch in a single sql transaction.
// Records already stored are ignored.
func (s *Store) Persist(ctx context.Context, b tdasync.Batch) error {
	_, err := s.Insert(ctx, b)
	return err
}

// Insert is like Persist, and returns the fields of the records that were not
// stored yet, in batch order.
func (s *Store) Insert(ctx context.Context, b tdasync.Batch) (inserted []record.Fields, err error) {
	if s.closed {
		return nil, tdasync.NewStoreError(opPersist, ErrStoreClosed)
	}
	// decode everything first, a malformed record stores nothing.
	fields := make([]record.Fields, len(b))
	for i, raw := range b {
		if fields[i], err = record.Extract(raw); err != nil {
			return nil, fmt.Errorf("cannot persist record %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, tdasync.NewStoreError(opPersist, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (id, transaction_time, transaction_date, type, net_amount, raw) VALUES (?, ?, ?, ?, ?, ?)`, s.table)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, tdasync.NewStoreError(opPersist, err)
	}
	defer stmt.Close()

	for i, f := range fields {
		res, err := stmt.ExecContext(ctx, f.ID, tdasync.CanonicalTimestamp(f.Date), f.RawDate, f.Type, f.NetAmount.String(), string(b[i]))
		if err != nil {
			return nil, tdasync.NewStoreError(opPersist, fmt.Errorf("record %s: %w", f.ID, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, tdasync.NewStoreError(opPersist, fmt.Errorf("record %s: %w", f.ID, err))
		}
		if n > 0 {
			inserted = append(inserted, f)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, tdasync.NewStoreError(opPersist, err)
	}
	if skipped := len(b) - len(inserted); skipped > 0 {
		log.Printf("ignored %d already stored transactions", skipped)
	}
	return inserted, nil
}

// Count returns the number of stored transactions.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.closed {
		return 0, tdasync.NewStoreError(opCount, ErrStoreClosed)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, tdasync.NewStoreError(opCount, err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
