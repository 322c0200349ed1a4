package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createLearnerTables(tx); err != nil {
			return err
		}
		if err := createSubmissionsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)

	// version 0 is a file created without a schema
	if version == 0 {
		return db.initializeSchema()
	}
	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// createLearnerTables creates the profile tables: style weights and skill
// level, per-concept gap tallies, and the mastered set.
func createLearnerTables(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS learners (
			user_id TEXT PRIMARY KEY,
			analytical REAL NOT NULL DEFAULT 0,
			creative REAL NOT NULL DEFAULT 0,
			practical REAL NOT NULL DEFAULT 0,
			collaborative REAL NOT NULL DEFAULT 0,
			skill_level TEXT NOT NULL DEFAULT 'intermediate',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create learners table: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS learner_gaps (
			user_id TEXT NOT NULL,
			concept TEXT NOT NULL,
			occurrences INTEGER NOT NULL DEFAULT 0,
			last_seen_at TEXT NOT NULL,

			PRIMARY KEY (user_id, concept),
			FOREIGN KEY (user_id) REFERENCES learners(user_id) ON DELETE CASCADE
		)
	`); err != nil {
		return fmt.Errorf("failed to create learner_gaps table: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS learner_mastery (
			user_id TEXT NOT NULL,
			concept TEXT NOT NULL,
			mastered_at TEXT NOT NULL,

			PRIMARY KEY (user_id, concept),
			FOREIGN KEY (user_id) REFERENCES learners(user_id) ON DELETE CASCADE
		)
	`); err != nil {
		return fmt.Errorf("failed to create learner_mastery table: %w", err)
	}
	return nil
}

// createSubmissionsTable creates the submission log. Code is stored
// zstd-compressed next to its blake2b fingerprint.
func createSubmissionsTable(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			language TEXT NOT NULL,
			problem_title TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			code BLOB NOT NULL,
			time_complexity TEXT NOT NULL,
			space_complexity TEXT NOT NULL,
			quality_score REAL NOT NULL,
			complexity_score REAL NOT NULL,
			patterns_json TEXT NOT NULL,
			gaps_json TEXT NOT NULL,
			submitted_at TEXT NOT NULL,

			FOREIGN KEY (user_id) REFERENCES learners(user_id) ON DELETE CASCADE
		)
	`); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, submitted_at)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_fingerprint ON submissions(fingerprint)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create submissions index: %w", err)
		}
	}
	return nil
}
