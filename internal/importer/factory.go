package importer

import (
	"fmt"
	"strings"

	"mediaetl/internal/entity"
)

// ErrUnsupportedEntity is wrapped by NewTransformer for unknown entity type
// names.
var ErrUnsupportedEntity = fmt.Errorf("unsupported entity type")

// NewTransformer returns a fresh transformer for the given entity type name.
// Matching is case-insensitive; "users", "movies" and "reviews" are the
// supported types.
func NewTransformer(entityType string) (entity.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(entityType)) {
	case "users":
		return entity.NewUser(), nil
	case "movies":
		return entity.NewMovie(), nil
	case "reviews":
		return entity.NewReview(), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: users, movies, reviews)", ErrUnsupportedEntity, entityType)
	}
}
