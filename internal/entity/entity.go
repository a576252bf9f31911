// Package entity maps raw CSV records onto the destination schema for the
// three importable entity types (users, movies, reviews) and validates the
// result against the domain rules.
//
// Each transformer follows the same per-record state machine:
//
//	Raw -> Transform -> (ResolveForeignKeys, reviews only) -> Validate
//
// Transform resets the error accumulator; date-parse failures and foreign-key
// misses append to it; Validate appends domain violations without resetting,
// so the final error set covers the whole record, not just the first stage
// that noticed a problem.
package entity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"mediaetl/internal/storage"
	"mediaetl/pkg/records"
)

// Spec describes the destination of one entity type: where records land and
// which columns identify them.
type Spec struct {
	// Name is the entity type name used by the factory ("users", ...).
	Name string

	// Table is the destination table.
	Table string

	// Key is the upsert key column: match on it to decide insert vs update.
	Key string

	// Unique lists additional unique columns the writer prechecks before
	// insert/update so conflicts surface as readable messages instead of
	// driver errors.
	Unique []string

	// Columns is the ordered list of destination columns, identical to the
	// transform targets.
	Columns []string
}

// Transformer converts one raw record into destination shape and validates
// it. Implementations are stateful per record (the error accumulator) and are
// not safe for concurrent use; the import pipeline is sequential.
type Transformer interface {
	// Spec returns the destination description for this entity type.
	Spec() Spec

	// Transform maps raw source columns to destination fields, applying
	// per-field normalization. Every transform target is present in the
	// result; fields with an empty source get the entity default.
	Transform(raw records.Record) records.Record

	// Validate checks the transformed record, accumulating every violation.
	// It returns true iff no errors have accumulated since Transform.
	Validate(rec records.Record) bool

	// ValidationErrors returns the violations accumulated for the current
	// record, in the order they were found.
	ValidationErrors() []string
}

// ForeignKeyResolver is the optional capability of transformers whose
// records reference rows of other tables. The pipeline asserts for it after
// Transform and, when present, calls it before Validate with the lookups of
// the open transaction.
type ForeignKeyResolver interface {
	// ResolveForeignKeys replaces external reference values in rec with
	// internal row ids. Unresolvable references accumulate validation
	// errors; the returned error is reserved for store-level failures.
	ResolveForeignKeys(ctx context.Context, rec records.Record, lk storage.Lookup) (records.Record, error)
}

// FieldMapping pairs a destination field with its acceptable source columns,
// first match wins.
type FieldMapping struct {
	Target  string
	Sources []string
}

// sourceValue returns the first non-empty source column value for a mapping,
// or "" when every candidate is absent or empty.
func sourceValue(raw records.Record, sources []string) string {
	for _, col := range sources {
		if v := raw.String(col); v != "" {
			return v
		}
	}
	return ""
}

// errAccum collects human-readable validation messages for one record.
type errAccum struct {
	errs []string
}

func (a *errAccum) reset() { a.errs = a.errs[:0] }
func (a *errAccum) add(format string, args ...any) {
	a.errs = append(a.errs, fmt.Sprintf(format, args...))
}

// ValidationErrors returns a copy of the accumulated messages.
func (a *errAccum) ValidationErrors() []string {
	out := make([]string, len(a.errs))
	copy(out, a.errs)
	return out
}

// requireFields appends one message per required field that is absent, nil,
// or empty.
func (a *errAccum) requireFields(rec records.Record, fields []string) {
	for _, f := range fields {
		if rec.Empty(f) {
			a.add("Required field '%s' is missing or empty", f)
		}
	}
}

// numericRange checks an optional numeric field against [min, max]. Nil or
// absent values pass; a present non-numeric value is itself a violation.
func (a *errAccum) numericRange(rec records.Record, field string, min, max float64, label string) {
	if rec.Empty(field) {
		return
	}
	v, ok := rec.Float(field)
	if !ok {
		a.add("%s must be numeric", label)
		return
	}
	if v < min || v > max {
		a.add("%s must be between %v and %v", label, min, max)
	}
}

// nonNegative checks an optional numeric field for >= 0.
func (a *errAccum) nonNegative(rec records.Record, field, label string) {
	if rec.Empty(field) {
		return
	}
	v, ok := rec.Float(field)
	if !ok || v < 0 {
		a.add("%s must be a positive number", label)
	}
}

// validEmail reports whether s parses as a bare RFC 5322 address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}
