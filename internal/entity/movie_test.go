package entity

import (
	"fmt"
	"testing"
	"time"

	"mediaetl/pkg/records"
)

func TestMovieTransformMinimalRow(t *testing.T) {
	m := NewMovie()
	rec := m.Transform(records.Record{
		"movie_id":          "m1",
		"title":             "Foo",
		"content_type":      "Movie",
		"genre_primary":     "Action",
		"release_year":      "2023",
		"language":          "English",
		"country_of_origin": "USA",
	})

	want := map[string]any{
		"external_movie_id": "m1",
		"title":             "Foo",
		"content_type":      "Movie",
		"genre_primary":     "Action",
		"release_year":      2023,
		"language":          "English",
		"country_of_origin": "USA",
	}
	for field, w := range want {
		if got := rec[field]; got != w {
			t.Errorf("%s = %#v, want %#v", field, got, w)
		}
	}
	if got := rec["is_netflix_original"]; got != false {
		t.Errorf("is_netflix_original = %#v, want false", got)
	}
	for _, field := range []string{"genre_secondary", "imdb_rating", "number_of_seasons", "added_to_platform"} {
		if rec[field] != nil {
			t.Errorf("%s = %#v, want nil", field, rec[field])
		}
	}
	if !m.Validate(rec) {
		t.Errorf("minimal row rejected: %v", m.ValidationErrors())
	}
}

func TestMovieTransformConversions(t *testing.T) {
	m := NewMovie()
	rec := m.Transform(records.Record{
		"movie_id":            "m2",
		"title":               "  Bar  ",
		"content_type":        "tv_series",
		"genre_primary":       "Drama",
		"release_year":        "2020",
		"duration_minutes":    "45",
		"language":            "English",
		"country_of_origin":   "UK",
		"imdb_rating":         "8.4",
		"production_budget":   "1000000.50",
		"number_of_seasons":   "3",
		"number_of_episodes":  "24",
		"is_netflix_original": "yes",
		"added_to_platform":   "03/01/2021",
	})

	if got := rec["title"]; got != "Bar" {
		t.Errorf("title = %#v, want Bar", got)
	}
	if got := rec["content_type"]; got != "TV Series" {
		t.Errorf("content_type = %#v, want TV Series", got)
	}
	if got := rec["imdb_rating"]; got != 8.4 {
		t.Errorf("imdb_rating = %#v, want 8.4", got)
	}
	if got := rec["number_of_seasons"]; got != 3 {
		t.Errorf("number_of_seasons = %#v, want 3", got)
	}
	if got := rec["is_netflix_original"]; got != true {
		t.Errorf("is_netflix_original = %#v, want true", got)
	}
	if got := rec["added_to_platform"]; got != "2021-03-01" {
		t.Errorf("added_to_platform = %#v, want 2021-03-01", got)
	}
}

func TestMovieValidateRanges(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantErr   string
	}{
		{
			name:      "release year before film existed",
			overrides: map[string]string{"release_year": "1800"},
			wantErr:   fmt.Sprintf("Release year must be between 1888 and %d", time.Now().Year()+5),
		},
		{
			name:      "imdb rating out of range",
			overrides: map[string]string{"imdb_rating": "11"},
			wantErr:   "IMDB rating must be between 0 and 10",
		},
		{
			name:      "missing title",
			overrides: map[string]string{"title": ""},
			wantErr:   "Required field 'title' is missing or empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := records.Record{
				"movie_id":          "m3",
				"title":             "Baz",
				"content_type":      "Documentary",
				"genre_primary":     "History",
				"release_year":      "2019",
				"language":          "English",
				"country_of_origin": "France",
			}
			for k, v := range tt.overrides {
				raw[k] = v
			}

			m := NewMovie()
			rec := m.Transform(raw)
			if m.Validate(rec) {
				t.Fatal("invalid record accepted")
			}
			if errs := m.ValidationErrors(); !containsMessage(errs, tt.wantErr) {
				t.Errorf("errors %v missing %q", errs, tt.wantErr)
			}
		})
	}
}
