package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS kids (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			date_of_birth  TEXT NOT NULL,
			sleep_time     TEXT NOT NULL,
			wake_time      TEXT NOT NULL,
			created_at     TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sleep_sessions (
			id          TEXT PRIMARY KEY,
			kid_id      TEXT NOT NULL REFERENCES kids(id),
			start_at    INTEGER NOT NULL,
			end_at      INTEGER CHECK(end_at IS NULL OR end_at > start_at),
			type        TEXT NOT NULL CHECK(type IN ('nap', 'nighttime')),
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_kid_start ON sleep_sessions(kid_id, start_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_running ON sleep_sessions(kid_id) WHERE end_at IS NULL;

		CREATE TABLE IF NOT EXISTS settings (
			key    TEXT PRIMARY KEY,
			value  TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
