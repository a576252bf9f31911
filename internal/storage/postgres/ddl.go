package postgres

// schemaDDL creates the destination tables. Statements are idempotent so a
// bootstrap against an existing database is a no-op.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		external_user_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		age INTEGER,
		gender TEXT,
		country TEXT NOT NULL,
		state_province TEXT,
		city TEXT NOT NULL,
		subscription_plan TEXT NOT NULL,
		subscription_start_date DATE,
		is_active BOOLEAN NOT NULL DEFAULT false,
		monthly_spend NUMERIC(10, 2),
		primary_device TEXT,
		household_size INTEGER,
		source_created_at DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		external_movie_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		content_type TEXT NOT NULL,
		genre_primary TEXT NOT NULL,
		genre_secondary TEXT,
		release_year INTEGER NOT NULL,
		duration_minutes INTEGER,
		rating TEXT,
		language TEXT NOT NULL,
		country_of_origin TEXT NOT NULL,
		imdb_rating DOUBLE PRECISION,
		production_budget NUMERIC(14, 2),
		box_office_revenue NUMERIC(14, 2),
		number_of_seasons INTEGER,
		number_of_episodes INTEGER,
		is_netflix_original BOOLEAN NOT NULL DEFAULT false,
		added_to_platform DATE,
		content_warning TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		external_review_id TEXT NOT NULL UNIQUE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		movie_id BIGINT NOT NULL REFERENCES movies(id),
		rating INTEGER NOT NULL,
		review_date DATE NOT NULL,
		device_type TEXT NOT NULL,
		is_verified_watch BOOLEAN NOT NULL DEFAULT false,
		helpful_votes INTEGER NOT NULL DEFAULT 0,
		total_votes INTEGER NOT NULL DEFAULT 0,
		review_text TEXT,
		sentiment TEXT,
		sentiment_score DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user_id ON reviews(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_movie_id ON reviews(movie_id)`,
}
