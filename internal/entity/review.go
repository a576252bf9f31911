package entity

import (
	"context"
	"fmt"

	"mediaetl/internal/normalize"
	"mediaetl/internal/storage"
	"mediaetl/pkg/records"
)

var reviewSpec = Spec{
	Name:   "reviews",
	Table:  "reviews",
	Key:    "external_review_id",
	Unique: nil,
	Columns: []string{
		"external_review_id", "user_id", "movie_id", "rating", "review_date",
		"device_type", "is_verified_watch", "helpful_votes", "total_votes",
		"review_text", "sentiment", "sentiment_score",
	},
}

var reviewMapping = []FieldMapping{
	{Target: "external_review_id", Sources: []string{"review_id"}},
	{Target: "user_id", Sources: []string{"user_id"}},
	{Target: "movie_id", Sources: []string{"movie_id"}},
	{Target: "rating", Sources: []string{"rating"}},
	{Target: "review_date", Sources: []string{"review_date"}},
	{Target: "device_type", Sources: []string{"device_type"}},
	{Target: "is_verified_watch", Sources: []string{"is_verified_watch"}},
	{Target: "helpful_votes", Sources: []string{"helpful_votes"}},
	{Target: "total_votes", Sources: []string{"total_votes"}},
	{Target: "review_text", Sources: []string{"review_text"}},
	{Target: "sentiment", Sources: []string{"sentiment"}},
	{Target: "sentiment_score", Sources: []string{"sentiment_score"}},
}

// Review transforms and validates review records. Unlike users and movies,
// reviews reference other rows: the raw user_id/movie_id columns carry
// *external* identifiers that ResolveForeignKeys swaps for internal row ids
// before validation.
type Review struct {
	errAccum
}

// NewReview returns a transformer for the "reviews" entity type.
func NewReview() *Review { return &Review{} }

func (r *Review) Spec() Spec { return reviewSpec }

func (r *Review) Transform(raw records.Record) records.Record {
	r.reset()
	rec := make(records.Record, len(reviewMapping))
	for _, m := range reviewMapping {
		rec[m.Target] = r.transformValue(m.Target, sourceValue(raw, m.Sources))
	}
	return rec
}

func (r *Review) transformValue(field, value string) any {
	if value == "" {
		switch field {
		case "is_verified_watch":
			return false
		case "helpful_votes", "total_votes":
			return 0
		default:
			return nil
		}
	}
	switch field {
	case "rating", "helpful_votes", "total_votes":
		return normalize.Integer(value)
	case "sentiment_score":
		return normalize.Float(value)
	case "is_verified_watch":
		return normalize.Boolean(value)
	case "review_date":
		d, err := normalize.ParseDate(value)
		if err != nil {
			r.add("%v", err)
			return nil
		}
		return d
	case "device_type":
		return normalize.Device.Normalize(value)
	case "sentiment":
		return normalize.Sentiment.Normalize(value)
	default:
		return normalize.Trim(value)
	}
}

// ResolveForeignKeys replaces the external user and movie identifiers with
// internal row ids looked up through lk. A missing referent appends a
// "not found" validation error instead of failing the call, so the record is
// rejected cleanly at the validation stage. The returned error is reserved
// for store-level failures (e.g. lost connection), which abort the run.
func (r *Review) ResolveForeignKeys(ctx context.Context, rec records.Record, lk storage.Lookup) (records.Record, error) {
	out := rec.Clone()

	if ext := rec.String("user_id"); ext != "" {
		id, found, err := lk.FindByKey(ctx, "users", "external_user_id", ext)
		if err != nil {
			return rec, fmt.Errorf("resolve user %q: %w", ext, err)
		}
		if !found {
			r.add("User not found: %s", ext)
			out["user_id"] = nil
		} else {
			out["user_id"] = id
		}
	}
	if ext := rec.String("movie_id"); ext != "" {
		id, found, err := lk.FindByKey(ctx, "movies", "external_movie_id", ext)
		if err != nil {
			return rec, fmt.Errorf("resolve movie %q: %w", ext, err)
		}
		if !found {
			r.add("Movie not found: %s", ext)
			out["movie_id"] = nil
		} else {
			out["movie_id"] = id
		}
	}
	return out, nil
}

var reviewRequired = []string{
	"external_review_id", "user_id", "movie_id", "rating", "review_date", "device_type",
}

func (r *Review) Validate(rec records.Record) bool {
	r.requireFields(rec, reviewRequired)
	r.numericRange(rec, "rating", 1, 5, "Rating")
	r.numericRange(rec, "sentiment_score", -1.0, 1.0, "Sentiment score")
	r.nonNegative(rec, "helpful_votes", "Helpful votes")
	r.nonNegative(rec, "total_votes", "Total votes")

	if h, ok1 := rec.Float("helpful_votes"); ok1 {
		if tot, ok2 := rec.Float("total_votes"); ok2 && h > tot {
			r.add("Helpful votes cannot exceed total votes")
		}
	}
	return len(r.errs) == 0
}
