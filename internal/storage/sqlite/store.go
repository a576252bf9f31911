// Package sqlite implements a SQLite-backed storage.Store using database/sql.
// It is the default backend: zero external services, works against a file or
// an in-memory database, and supports the same transactional upsert contract
// as the server-backed stores.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediaetl/internal/storage"

	sqlite "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return Open(ctx, cfg)
	})
}

// Store is a SQLite-backed implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database from cfg.DSN and optionally bootstraps the
// destination schema.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:media.db?cache=shared"
//	"media.db"
//	":memory:"
func Open(ctx context.Context, cfg storage.Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// In-memory databases vanish per connection; force a single one.
	if strings.Contains(cfg.DSN, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if cfg.Bootstrap {
		if err := s.bootstrap(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) bootstrap(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: bootstrap: %w", err)
		}
	}
	return nil
}

// Begin starts the transaction an import run performs all writes in.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

// Close releases the underlying connection resources.
func (s *Store) Close() error { return s.db.Close() }

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) FindByKey(ctx context.Context, table, column string, value any) (int64, bool, error) {
	q := fmt.Sprintf("SELECT id FROM %s WHERE %s = ? LIMIT 1", table, column)
	var id int64
	err := t.tx.QueryRowContext(ctx, q, value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite: find %s.%s: %w", table, column, err)
	}
	return id, true, nil
}

func (t *sqliteTx) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
	res, err := t.tx.ExecContext(ctx, q, values...)
	if err != nil {
		return 0, mapConstraintErr(err, table)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert %s: %w", table, err)
	}
	return id, nil
}

func (t *sqliteTx) Update(ctx context.Context, table string, id int64, columns []string, values []any) error {
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + " = ?"
	}
	q := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		table, strings.Join(sets, ", "),
	)
	args := append(append([]any{}, values...), id)
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return mapConstraintErr(err, table)
	}
	return nil
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("sqlite: rollback: %w", err)
	}
	return nil
}

// SQLite extended result codes for unique-constraint violations.
const (
	codeConstraintUnique     = 2067
	codeConstraintPrimaryKey = 1555
)

// mapConstraintErr converts the driver's unique-violation errors into
// *storage.ConflictError. The offending column is recovered from the message,
// which SQLite formats as "UNIQUE constraint failed: table.column".
func mapConstraintErr(err error, table string) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("sqlite: write %s: %w", table, err)
	}
	switch se.Code() {
	case codeConstraintUnique, codeConstraintPrimaryKey:
		return &storage.ConflictError{Table: table, Column: columnFromMessage(se.Error(), table)}
	default:
		return fmt.Errorf("sqlite: write %s: %w", table, err)
	}
}

func columnFromMessage(msg, table string) string {
	marker := table + "."
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	col := msg[i+len(marker):]
	if j := strings.IndexAny(col, " ,)"); j >= 0 {
		col = col[:j]
	}
	return col
}
