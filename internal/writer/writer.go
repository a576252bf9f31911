// Package writer performs upserting writes of transformed records inside a
// single storage transaction. It is deliberately dumb about entity semantics:
// the entity spec tells it the table, the upsert key and the extra unique
// columns, and it reports per-record outcomes through LastOperation/LastError
// instead of returning structured errors for expected per-row failures.
package writer

import (
	"context"
	"errors"
	"fmt"

	"mediaetl/internal/entity"
	"mediaetl/internal/storage"
	"mediaetl/pkg/records"
)

// Operation labels the outcome of the most recent WriteRecord call.
type Operation string

const (
	OpNone     Operation = ""
	OpInserted Operation = "inserted"
	OpUpdated  Operation = "updated"
	OpFailed   Operation = "failed"
)

// Writer upserts records into one storage transaction. Not safe for
// concurrent use; the import pipeline is sequential.
type Writer struct {
	store storage.Store
	tx    storage.Tx

	lastOp  Operation
	lastErr string
}

// New returns a Writer over store. Begin must be called before WriteRecord.
func New(store storage.Store) *Writer {
	return &Writer{store: store}
}

// Begin opens the transaction all subsequent writes run in.
func (w *Writer) Begin(ctx context.Context) error {
	if w.tx != nil {
		return errors.New("writer: transaction already open")
	}
	tx, err := w.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("writer: begin: %w", err)
	}
	w.tx = tx
	return nil
}

// Lookup exposes the open transaction's key lookups, for foreign-key
// resolution against rows written earlier in the same run.
func (w *Writer) Lookup() storage.Lookup { return w.tx }

// WriteRecord upserts one transformed record per the entity spec: a row
// matching spec.Key is updated, otherwise a new row is inserted. A record
// with no value for the key column skips the lookup and is inserted as new.
// It returns false on per-record failure without aborting the transaction;
// the caller reads LastOperation and LastError for the outcome.
func (w *Writer) WriteRecord(ctx context.Context, spec entity.Spec, rec records.Record) bool {
	w.lastOp, w.lastErr = OpNone, ""
	if w.tx == nil {
		return w.fail("no open transaction")
	}

	var (
		existingID int64
		found      bool
	)
	if keyValue := rec[spec.Key]; keyValue != nil && keyValue != "" {
		var err error
		existingID, found, err = w.tx.FindByKey(ctx, spec.Table, spec.Key, keyValue)
		if err != nil {
			return w.fail(err.Error())
		}
	}

	// Secondary unique columns are prechecked so a cross-row collision
	// becomes a readable message instead of a driver error mid-statement.
	for _, col := range spec.Unique {
		v := rec[col]
		if v == nil || v == "" {
			continue
		}
		otherID, otherFound, err := w.tx.FindByKey(ctx, spec.Table, col, v)
		if err != nil {
			return w.fail(err.Error())
		}
		if otherFound && (!found || otherID != existingID) {
			conflict := &storage.ConflictError{Table: spec.Table, Column: col, Value: v}
			return w.fail(conflict.Error())
		}
	}

	columns, values := orderedColumns(spec, rec)
	if found {
		if err := w.tx.Update(ctx, spec.Table, existingID, columns, values); err != nil {
			return w.fail(err.Error())
		}
		w.lastOp = OpUpdated
		return true
	}
	if _, err := w.tx.Insert(ctx, spec.Table, columns, values); err != nil {
		return w.fail(err.Error())
	}
	w.lastOp = OpInserted
	return true
}

// Finalize flushes any buffered work before Commit. The writer writes
// through on every record, so today this only checks the transaction is
// still open; callers run it ahead of Commit regardless so a buffering
// implementation can slot in without contract changes.
func (w *Writer) Finalize(ctx context.Context) error {
	if w.tx == nil {
		return errors.New("writer: no open transaction")
	}
	return nil
}

// Commit commits the open transaction.
func (w *Writer) Commit(ctx context.Context) error {
	if w.tx == nil {
		return errors.New("writer: no open transaction")
	}
	err := w.tx.Commit(ctx)
	w.tx = nil
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	return nil
}

// Rollback discards the open transaction. Safe to call when none is open.
func (w *Writer) Rollback(ctx context.Context) error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback(ctx)
	w.tx = nil
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	return nil
}

// LastOperation reports the outcome of the most recent WriteRecord.
func (w *Writer) LastOperation() Operation { return w.lastOp }

// LastError reports the failure message of the most recent WriteRecord, or
// "" when it succeeded.
func (w *Writer) LastError() string { return w.lastErr }

func (w *Writer) fail(msg string) bool {
	w.lastOp, w.lastErr = OpFailed, msg
	return false
}

// orderedColumns flattens a record into parallel column/value slices in the
// spec's column order, so generated SQL is deterministic.
func orderedColumns(spec entity.Spec, rec records.Record) ([]string, []any) {
	columns := make([]string, 0, len(spec.Columns))
	values := make([]any, 0, len(spec.Columns))
	for _, col := range spec.Columns {
		v, ok := rec[col]
		if !ok {
			continue
		}
		columns = append(columns, col)
		values = append(values, v)
	}
	return columns, values
}
