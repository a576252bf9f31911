package sqlite

// schemaDDL creates the destination tables. Statements are idempotent so a
// bootstrap against an existing database is a no-op.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
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
		subscription_start_date TEXT,
		is_active INTEGER NOT NULL DEFAULT 0,
		monthly_spend REAL,
		primary_device TEXT,
		household_size INTEGER,
		source_created_at TEXT,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
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
		imdb_rating REAL,
		production_budget REAL,
		box_office_revenue REAL,
		number_of_seasons INTEGER,
		number_of_episodes INTEGER,
		is_netflix_original INTEGER NOT NULL DEFAULT 0,
		added_to_platform TEXT,
		content_warning TEXT,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_review_id TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		movie_id INTEGER NOT NULL REFERENCES movies(id),
		rating INTEGER NOT NULL,
		review_date TEXT NOT NULL,
		device_type TEXT NOT NULL,
		is_verified_watch INTEGER NOT NULL DEFAULT 0,
		helpful_votes INTEGER NOT NULL DEFAULT 0,
		total_votes INTEGER NOT NULL DEFAULT 0,
		review_text TEXT,
		sentiment TEXT,
		sentiment_score REAL,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user_id ON reviews(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_movie_id ON reviews(movie_id)`,
}
