// Package mysql implements a MySQL-backed storage.Store using database/sql
// with the go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"mediaetl/internal/storage"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return Open(ctx, cfg)
	})
}

// Store is a MySQL-backed implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// Open opens a MySQL connection from cfg.DSN and optionally bootstraps the
// destination schema.
//
// DSN uses go-sql-driver syntax, for example:
//
//	"user:pass@tcp(localhost:3306)/media?parseTime=true"
func Open(ctx context.Context, cfg storage.Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
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
			return fmt.Errorf("mysql: bootstrap: %w", err)
		}
	}
	return nil
}

// Begin starts the transaction an import run performs all writes in.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql: begin tx: %w", err)
	}
	return &mysqlTx{tx: tx}, nil
}

// Close releases the underlying connection resources.
func (s *Store) Close() error { return s.db.Close() }

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) FindByKey(ctx context.Context, table, column string, value any) (int64, bool, error) {
	q := fmt.Sprintf("SELECT id FROM %s WHERE %s = ? LIMIT 1", table, column)
	var id int64
	err := t.tx.QueryRowContext(ctx, q, value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("mysql: find %s.%s: %w", table, column, err)
	}
	return id, true, nil
}

func (t *mysqlTx) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
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
		return 0, fmt.Errorf("mysql: insert %s: %w", table, err)
	}
	return id, nil
}

func (t *mysqlTx) Update(ctx context.Context, table string, id int64, columns []string, values []any) error {
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

func (t *mysqlTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

func (t *mysqlTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("mysql: rollback: %w", err)
	}
	return nil
}

// duplicateEntry is the MySQL error number for unique-key violations.
const duplicateEntry = 1062

// mapConstraintErr converts driver duplicate-entry errors into
// *storage.ConflictError. The column is recovered from the key name in the
// message, "Duplicate entry '...' for key 'table.column'" on MySQL 8.
func mapConstraintErr(err error, table string) error {
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == duplicateEntry {
		return &storage.ConflictError{Table: table, Column: columnFromMessage(myErr.Message, table)}
	}
	return fmt.Errorf("mysql: write %s: %w", table, err)
}

func columnFromMessage(msg, table string) string {
	i := strings.Index(msg, "for key '")
	if i < 0 {
		return ""
	}
	key := msg[i+len("for key '"):]
	if j := strings.IndexByte(key, '\''); j >= 0 {
		key = key[:j]
	}
	key = strings.TrimPrefix(key, table+".")
	return key
}
