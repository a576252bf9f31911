package entity

import (
	"time"

	"mediaetl/internal/normalize"
	"mediaetl/pkg/records"
)

var movieSpec = Spec{
	Name:   "movies",
	Table:  "movies",
	Key:    "external_movie_id",
	Unique: nil,
	Columns: []string{
		"external_movie_id", "title", "content_type", "genre_primary",
		"genre_secondary", "release_year", "duration_minutes", "rating",
		"language", "country_of_origin", "imdb_rating", "production_budget",
		"box_office_revenue", "number_of_seasons", "number_of_episodes",
		"is_netflix_original", "added_to_platform", "content_warning",
	},
}

var movieMapping = []FieldMapping{
	{Target: "external_movie_id", Sources: []string{"movie_id"}},
	{Target: "title", Sources: []string{"title"}},
	{Target: "content_type", Sources: []string{"content_type"}},
	{Target: "genre_primary", Sources: []string{"genre_primary"}},
	{Target: "genre_secondary", Sources: []string{"genre_secondary"}},
	{Target: "release_year", Sources: []string{"release_year"}},
	{Target: "duration_minutes", Sources: []string{"duration_minutes"}},
	{Target: "rating", Sources: []string{"rating"}},
	{Target: "language", Sources: []string{"language"}},
	{Target: "country_of_origin", Sources: []string{"country_of_origin"}},
	{Target: "imdb_rating", Sources: []string{"imdb_rating"}},
	{Target: "production_budget", Sources: []string{"production_budget"}},
	{Target: "box_office_revenue", Sources: []string{"box_office_revenue"}},
	{Target: "number_of_seasons", Sources: []string{"number_of_seasons"}},
	{Target: "number_of_episodes", Sources: []string{"number_of_episodes"}},
	{Target: "is_netflix_original", Sources: []string{"is_netflix_original"}},
	{Target: "added_to_platform", Sources: []string{"added_to_platform"}},
	{Target: "content_warning", Sources: []string{"content_warning"}},
}

// Movie transforms and validates catalog title records.
type Movie struct {
	errAccum
}

// NewMovie returns a transformer for the "movies" entity type.
func NewMovie() *Movie { return &Movie{} }

func (m *Movie) Spec() Spec { return movieSpec }

func (m *Movie) Transform(raw records.Record) records.Record {
	m.reset()
	rec := make(records.Record, len(movieMapping))
	for _, fm := range movieMapping {
		rec[fm.Target] = m.transformValue(fm.Target, sourceValue(raw, fm.Sources))
	}
	return rec
}

func (m *Movie) transformValue(field, value string) any {
	if value == "" {
		if field == "is_netflix_original" {
			return false
		}
		return nil
	}
	switch field {
	case "content_type":
		return normalize.ContentType.Normalize(value)
	case "release_year", "duration_minutes", "number_of_seasons", "number_of_episodes":
		return normalize.Integer(value)
	case "imdb_rating", "production_budget", "box_office_revenue":
		return normalize.Float(value)
	case "is_netflix_original":
		return normalize.Boolean(value)
	case "added_to_platform":
		d, err := normalize.ParseDate(value)
		if err != nil {
			m.add("%v", err)
			return nil
		}
		return d
	default:
		return normalize.Trim(value)
	}
}

var movieRequired = []string{
	"external_movie_id", "title", "content_type", "genre_primary",
	"release_year", "language", "country_of_origin",
}

func (m *Movie) Validate(rec records.Record) bool {
	m.requireFields(rec, movieRequired)
	m.numericRange(rec, "release_year", 1888, float64(time.Now().Year()+5), "Release year")
	m.numericRange(rec, "imdb_rating", 0, 10, "IMDB rating")
	m.numericRange(rec, "duration_minutes", 0, 10000, "Duration")
	return len(m.errs) == 0
}
