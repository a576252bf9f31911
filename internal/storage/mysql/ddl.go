package mysql

// schemaDDL creates the destination tables. Statements are idempotent so a
// bootstrap against an existing database is a no-op.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		external_user_id VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		age INT NULL,
		gender VARCHAR(32) NULL,
		country VARCHAR(100) NOT NULL,
		state_province VARCHAR(100) NULL,
		city VARCHAR(100) NOT NULL,
		subscription_plan VARCHAR(32) NOT NULL,
		subscription_start_date DATE NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 0,
		monthly_spend DECIMAL(10, 2) NULL,
		primary_device VARCHAR(32) NULL,
		household_size INT NULL,
		source_created_at DATE NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY external_user_id (external_user_id),
		UNIQUE KEY email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		external_movie_id VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		content_type VARCHAR(32) NOT NULL,
		genre_primary VARCHAR(64) NOT NULL,
		genre_secondary VARCHAR(64) NULL,
		release_year INT NOT NULL,
		duration_minutes INT NULL,
		rating VARCHAR(16) NULL,
		language VARCHAR(64) NOT NULL,
		country_of_origin VARCHAR(100) NOT NULL,
		imdb_rating DOUBLE NULL,
		production_budget DECIMAL(14, 2) NULL,
		box_office_revenue DECIMAL(14, 2) NULL,
		number_of_seasons INT NULL,
		number_of_episodes INT NULL,
		is_netflix_original TINYINT(1) NOT NULL DEFAULT 0,
		added_to_platform DATE NULL,
		content_warning VARCHAR(255) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY external_movie_id (external_movie_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		external_review_id VARCHAR(64) NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		rating INT NOT NULL,
		review_date DATE NOT NULL,
		device_type VARCHAR(32) NOT NULL,
		is_verified_watch TINYINT(1) NOT NULL DEFAULT 0,
		helpful_votes INT NOT NULL DEFAULT 0,
		total_votes INT NOT NULL DEFAULT 0,
		review_text TEXT NULL,
		sentiment VARCHAR(16) NULL,
		sentiment_score DOUBLE NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY external_review_id (external_review_id),
		KEY idx_reviews_user_id (user_id),
		KEY idx_reviews_movie_id (movie_id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_reviews_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	)`,
}
