// Package postgres implements a Postgres-backed storage.Store using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediaetl/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		return Open(ctx, cfg)
	})
}

// Store is a Postgres-backed implementation of storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects a pgx pool to cfg.DSN and optionally bootstraps the
// destination schema.
func Open(ctx context.Context, cfg storage.Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &Store{pool: pool}
	if cfg.Bootstrap {
		if err := s.bootstrap(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) bootstrap(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: bootstrap: %w", err)
		}
	}
	return nil
}

// Begin starts the transaction an import run performs all writes in.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) FindByKey(ctx context.Context, table, column string, value any) (int64, bool, error) {
	q := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1 LIMIT 1", table, column)
	var id int64
	err := t.tx.QueryRow(ctx, q, value).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: find %s.%s: %w", table, column, err)
	}
	return id, true, nil
}

func (t *pgTx) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
	var id int64
	if err := t.tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return 0, mapConstraintErr(err, table)
	}
	return id, nil
}

func (t *pgTx) Update(ctx context.Context, table string, id int64, columns []string, values []any) error {
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	q := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = now() WHERE id = $%d",
		table, strings.Join(sets, ", "), len(columns)+1,
	)
	args := append(append([]any{}, values...), id)
	if _, err := t.tx.Exec(ctx, q, args...); err != nil {
		return mapConstraintErr(err, table)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("postgres: rollback: %w", err)
	}
	return nil
}

// uniqueViolation is the Postgres error code for unique-constraint failures.
const uniqueViolation = "23505"

// mapConstraintErr converts pgconn unique-violation errors into
// *storage.ConflictError. The column is derived from the constraint name,
// which the bootstrap schema keeps in <table>_<column>_key form.
func mapConstraintErr(err error, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &storage.ConflictError{Table: table, Column: columnFromConstraint(pgErr.ConstraintName, table)}
	}
	return fmt.Errorf("postgres: write %s: %w", table, err)
}

func columnFromConstraint(constraint, table string) string {
	col := strings.TrimPrefix(constraint, table+"_")
	col = strings.TrimSuffix(col, "_key")
	col = strings.TrimSuffix(col, "_pkey")
	return col
}
