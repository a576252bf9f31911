// Package storage contains the storage-agnostic contracts used by the import
// pipeline and a small factory keyed by backend kind.
//
// Concrete backends (sqlite, postgres, mysql) live in subpackages and
// register themselves via init; importing mediaetl/internal/storage/all (even
// blank) makes every built-in backend available. The rest of the application
// depends only on the interfaces here.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and configures a backend. Kind chooses the implementation;
// everything else is passed through to it.
type Config struct {
	Kind      string
	DSN       string
	Bootstrap bool // create destination tables on open, where supported

	// Options carries backend-specific knobs (free-form, backend-defined).
	Options map[string]any
}

// Store is an upsert-capable destination. One import run uses exactly one
// transaction obtained from Begin.
type Store interface {
	// Begin opens the transaction the whole import runs inside.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the underlying connection resources.
	Close() error
}

// Lookup resolves a row's surrogate id by a unique column value.
type Lookup interface {
	// FindByKey returns the id of the row in table whose column equals
	// value, or found=false when no such row exists. Errors are store-level
	// failures, never "not found".
	FindByKey(ctx context.Context, table, column string, value any) (id int64, found bool, err error)
}

// Tx is a single transaction over the store. All writes of an import run go
// through one Tx; Commit or Rollback ends it.
type Tx interface {
	Lookup

	// Insert adds a row and returns its new id. Unique-constraint
	// violations are reported as *ConflictError.
	Insert(ctx context.Context, table string, columns []string, values []any) (int64, error)

	// Update overwrites the given columns of the row with the given id.
	// Unique-constraint violations are reported as *ConflictError.
	Update(ctx context.Context, table string, id int64, columns []string, values []any) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ConflictError reports a unique-constraint violation with enough identity
// (table, column) for a human-readable per-row failure message.
type ConflictError struct {
	Table  string
	Column string
	Value  any
}

func (e *ConflictError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("unique constraint on %s.%s violated by value %v", e.Table, e.Column, e.Value)
	}
	return fmt.Sprintf("unique constraint on %s.%s violated", e.Table, e.Column)
}

// Factory constructs a Store from configuration.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Backends call this from
// init; duplicate registration is a programming error and panics.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("storage: duplicate Register(%q)", kind))
	}
	factories[kind] = f
}

// New opens a Store for cfg.Kind. Unknown kinds list the registered backends
// in the error so a typo is obvious.
func New(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
