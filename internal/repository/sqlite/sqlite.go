// Package sqlite implements the repository interfaces on SQLite.
//
// SQLite is embedded: the whole database is a single file next to the
// binary, which fits a single-server deployment and makes tests trivial
// (":memory:" gives every test its own throwaway database). The
// modernc.org/sqlite driver is pure Go, so builds need no C toolchain
// and cross-compile cleanly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Blank import: the driver registers itself with database/sql
	// under the name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB connection pool. The repository types (Users,
// Jobs, SavedJobs, Profiles) all share it; the server owns its
// lifecycle and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), applies the
// connection PRAGMAs, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path or permission
	// problem surfaces here and not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight, which matters
	// once multiple HTTP requests share the pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; saved_jobs references
	// users and job_listings, so turn enforcement on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is still reachable, for health checks.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Jobs returns the job listing repository backed by this database.
func (db *DB) Jobs() *JobDB { return &JobDB{conn: db.conn} }

// SavedJobs returns the saved-job repository backed by this database.
func (db *DB) SavedJobs() *SavedJobDB { return &SavedJobDB{conn: db.conn} }

// Profiles returns the profile repository backed by this database.
func (db *DB) Profiles() *ProfileDB { return &ProfileDB{conn: db.conn} }

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it runs unconditionally on every startup.
func (db *DB) migrate() error {
	// Users. Email is unique after lowercasing (done by the repository,
	// not a collation) but nullable: OAuth providers may withhold the
	// address, and NULLs never collide under UNIQUE. The token columns
	// store SHA-256 hex digests, never raw tokens. Provider IDs must be
	// unique when present; the partial indexes allow many NULLs but no
	// duplicate values.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                   TEXT PRIMARY KEY,
			email                TEXT UNIQUE,
			password_hash        TEXT NOT NULL DEFAULT '',
			google_id            TEXT,
			linkedin_id          TEXT,
			picture              TEXT NOT NULL DEFAULT '',
			verified             INTEGER NOT NULL DEFAULT 0,
			verify_token_hash    TEXT,
			verify_token_expires DATETIME,
			reset_token_hash     TEXT,
			reset_token_expires  DATETIME,
			last_login           DATETIME,
			created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_google_id
			ON users(google_id) WHERE google_id IS NOT NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_linkedin_id
			ON users(linkedin_id) WHERE linkedin_id IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_users_verify_token
			ON users(verify_token_hash) WHERE verify_token_hash IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_users_reset_token
			ON users(reset_token_hash) WHERE reset_token_hash IS NOT NULL;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Job listings. Location and salary are flattened into columns;
	// they are only ever read back whole.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS job_listings (
			id              TEXT PRIMARY KEY,
			company_logo    TEXT NOT NULL DEFAULT '',
			company_name    TEXT NOT NULL,
			position        TEXT NOT NULL,
			city            TEXT NOT NULL DEFAULT '',
			country         TEXT NOT NULL DEFAULT '',
			employment_type TEXT NOT NULL,
			min_experience  TEXT NOT NULL DEFAULT '',
			salary_min      INTEGER NOT NULL DEFAULT 0,
			salary_max      INTEGER NOT NULL DEFAULT 0,
			salary_currency TEXT NOT NULL DEFAULT 'IDR',
			posted_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_job_listings_created_at
			ON job_listings(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating job_listings table: %w", err)
	}

	// Saved jobs. The UNIQUE(user_id, job_id) pair is the "no double
	// bookmark" rule; the service checks first for a friendly error and
	// the constraint backstops races.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS saved_jobs (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			job_id     TEXT NOT NULL REFERENCES job_listings(id),
			saved_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, job_id)
		);
		CREATE INDEX IF NOT EXISTS idx_saved_jobs_user_id
			ON saved_jobs(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating saved_jobs table: %w", err)
	}

	// Profiles. The structured sections live in JSON columns; SQLite
	// stores them as TEXT and the repository marshals on the way in
	// and out.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL UNIQUE REFERENCES users(id),
			full_name     TEXT NOT NULL,
			born_place    TEXT NOT NULL,
			born_date     DATETIME NOT NULL,
			short_profile TEXT NOT NULL DEFAULT '',
			phone_number  TEXT NOT NULL,
			experience    TEXT NOT NULL DEFAULT '[]',
			education     TEXT NOT NULL DEFAULT '[]',
			certification TEXT NOT NULL DEFAULT '[]',
			skills        TEXT NOT NULL DEFAULT '{}',
			portfolio     TEXT NOT NULL DEFAULT '[]',
			languages     TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	return nil
}

// nullable converts an empty string to NULL for columns whose UNIQUE
// index must ignore absent values (provider IDs and token hashes).
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableTime converts a zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
