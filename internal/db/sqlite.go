// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/sleep"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLite implements sleep.Repository using SQLite.
type SQLite struct {
	db    *sql.DB
	path  string
	clock dateutil.Clock
}

// Option configures the repository.
type Option func(*SQLite)

// WithClock sets the clock used to bound running sessions in overlap checks.
func WithClock(c dateutil.Clock) Option {
	return func(s *SQLite) { s.clock = c }
}

// New creates a new SQLite repository and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, path: path, clock: dateutil.SystemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateKid adds a new kid.
func (s *SQLite) CreateKid(ctx context.Context, k *sleep.Kid) error {
	return insertKid(ctx, s.db, k)
}

// CreateKidWithSession adds a kid and its seeded session in one transaction.
func (s *SQLite) CreateKidWithSession(ctx context.Context, k *sleep.Kid, sess *sleep.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertKid(ctx, tx, k); err != nil {
		return err
	}
	if err := insertSession(ctx, tx, sess); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertKid(ctx context.Context, q querier, k *sleep.Kid) error {
	query := `
		INSERT INTO kids (id, name, date_of_birth, sleep_time, wake_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		k.ID,
		k.Name,
		k.DateOfBirth.Format("2006-01-02"),
		k.SleepTime,
		k.WakeTime,
		k.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting kid: %w", err)
	}
	return nil
}

// GetKid retrieves a kid by ID.
func (s *SQLite) GetKid(ctx context.Context, id string) (*sleep.Kid, error) {
	query := `
		SELECT id, name, date_of_birth, sleep_time, wake_time, created_at
		FROM kids
		WHERE id = ?
	`
	k, err := scanKid(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sleep.ErrKidNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying kid: %w", err)
	}
	return k, nil
}

// ListKids returns all kids ordered by name.
func (s *SQLite) ListKids(ctx context.Context) ([]*sleep.Kid, error) {
	query := `
		SELECT id, name, date_of_birth, sleep_time, wake_time, created_at
		FROM kids
		ORDER BY name, created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying kids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var kids []*sleep.Kid
	for rows.Next() {
		k, err := scanKid(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning kid: %w", err)
		}
		kids = append(kids, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kids: %w", err)
	}
	return kids, nil
}

// UpdateKid replaces the stored kid with the same ID.
func (s *SQLite) UpdateKid(ctx context.Context, k *sleep.Kid) error {
	query := `
		UPDATE kids
		SET name = ?, date_of_birth = ?, sleep_time = ?, wake_time = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		k.Name,
		k.DateOfBirth.Format("2006-01-02"),
		k.SleepTime,
		k.WakeTime,
		k.ID,
	)
	if err != nil {
		return fmt.Errorf("updating kid: %w", err)
	}
	return requireAffected(result, sleep.ErrKidNotFound, k.ID)
}

// CreateSession adds a session.
// Returns ErrSessionOverlap or ErrSessionInProgress on conflicts.
func (s *SQLite) CreateSession(ctx context.Context, sess *sleep.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkConflicts(ctx, tx, sess); err != nil {
		return err
	}
	if err := insertSession(ctx, tx, sess); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceSession updates the session with the same ID.
func (s *SQLite) ReplaceSession(ctx context.Context, sess *sleep.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkConflicts(ctx, tx, sess); err != nil {
		return err
	}

	query := `
		UPDATE sleep_sessions
		SET start_at = ?, end_at = ?, type = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		sess.Start.Unix(),
		nullableUnix(sess.End),
		sess.Type,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if err := requireAffected(result, sleep.ErrSessionNotFound, sess.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteSession removes a session by ID.
func (s *SQLite) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sleep_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return requireAffected(result, sleep.ErrSessionNotFound, id)
}

// GetSession retrieves a session by ID.
func (s *SQLite) GetSession(ctx context.Context, id string) (*sleep.Session, error) {
	query := `
		SELECT id, kid_id, start_at, end_at, type, created_at
		FROM sleep_sessions
		WHERE id = ?
	`
	sess, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sleep.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every session of a kid ordered by start.
func (s *SQLite) ListSessions(ctx context.Context, kidID string) ([]*sleep.Session, error) {
	query := `
		SELECT id, kid_id, start_at, end_at, type, created_at
		FROM sleep_sessions
		WHERE kid_id = ?
		ORDER BY start_at, id
	`
	return s.querySessions(ctx, query, kidID)
}

// ListSessionsByRange returns the kid's sessions starting within [start, end).
func (s *SQLite) ListSessionsByRange(ctx context.Context, kidID string, start, end time.Time) ([]*sleep.Session, error) {
	query := `
		SELECT id, kid_id, start_at, end_at, type, created_at
		FROM sleep_sessions
		WHERE kid_id = ? AND start_at >= ? AND start_at < ?
		ORDER BY start_at, id
	`
	return s.querySessions(ctx, query, kidID, start.Unix(), end.Unix())
}

// InProgressSession returns the running session of a kid, or nil.
func (s *SQLite) InProgressSession(ctx context.Context, kidID string) (*sleep.Session, error) {
	query := `
		SELECT id, kid_id, start_at, end_at, type, created_at
		FROM sleep_sessions
		WHERE kid_id = ? AND end_at IS NULL
		LIMIT 1
	`
	sess, err := scanSession(s.db.QueryRowContext(ctx, query, kidID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying running session: %w", err)
	}
	return sess, nil
}

// GetSetting returns a setting value, or "" if unset.
func (s *SQLite) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a setting value.
func (s *SQLite) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storing setting %q: %w", key, err)
	}
	return nil
}

func insertSession(ctx context.Context, q querier, sess *sleep.Session) error {
	query := `
		INSERT INTO sleep_sessions (id, kid_id, start_at, end_at, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		sess.ID,
		sess.KidID,
		sess.Start.Unix(),
		nullableUnix(sess.End),
		sess.Type,
		sess.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// checkConflicts rejects a session that overlaps another session of the same
// kid, or that is open while another one is running. Running sessions are
// treated as ending now.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
func (s *SQLite) checkConflicts(ctx context.Context, q querier, sess *sleep.Session) error {
	now := s.clock.Now()

	if sess.End == nil {
		var runningID string
		err := q.QueryRowContext(ctx,
			`SELECT id FROM sleep_sessions WHERE kid_id = ? AND end_at IS NULL AND id != ? LIMIT 1`,
			sess.KidID, sess.ID,
		).Scan(&runningID)
		if err == nil {
			return fmt.Errorf("%w: %s", sleep.ErrSessionInProgress, runningID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking running session: %w", err)
		}
	}

	end := sess.EndOr(now)
	if !end.After(sess.Start) {
		end = sess.Start.Add(time.Minute)
	}

	query := `
		SELECT id, start_at, end_at
		FROM sleep_sessions
		WHERE kid_id = ?
		  AND id != ?
		  AND start_at < ?
		  AND COALESCE(end_at, ?) > ?
		LIMIT 1
	`
	var (
		id         string
		existStart int64
		existEnd   sql.NullInt64
	)
	err := q.QueryRowContext(ctx, query,
		sess.KidID,
		sess.ID,
		end.Unix(),
		now.Unix(),
		sess.Start.Unix(),
	).Scan(&id, &existStart, &existEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}

	endLabel := "now"
	if existEnd.Valid {
		endLabel = formatUnix(existEnd.Int64)
	}
	return fmt.Errorf("%w: conflicts with %s (%s - %s)",
		sleep.ErrSessionOverlap, id, formatUnix(existStart), endLabel)
}

func (s *SQLite) querySessions(ctx context.Context, query string, args ...any) ([]*sleep.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*sleep.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKid(row scanner) (*sleep.Kid, error) {
	var (
		k         sleep.Kid
		dob       string
		createdAt string
	)
	if err := row.Scan(&k.ID, &k.Name, &dob, &k.SleepTime, &k.WakeTime, &createdAt); err != nil {
		return nil, err
	}

	var err error
	k.DateOfBirth, err = parseDate(dob)
	if err != nil {
		return nil, fmt.Errorf("parsing date of birth: %w", err)
	}
	k.CreatedAt, err = parseDate(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	return &k, nil
}

func scanSession(row scanner) (*sleep.Session, error) {
	var (
		sess      sleep.Session
		start     int64
		end       sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&sess.ID, &sess.KidID, &start, &end, &sess.Type, &createdAt); err != nil {
		return nil, err
	}

	sess.Start = time.Unix(start, 0).Local()
	if end.Valid {
		e := time.Unix(end.Int64, 0).Local()
		sess.End = &e
	}

	var err error
	sess.CreatedAt, err = parseDate(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	return &sess, nil
}

func requireAffected(result sql.Result, notFound error, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).Local().Format("2006-01-02 15:04")
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values (midnight) are parsed in local timezone to match time.Now() behavior.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	// Date-only values may come back as "2006-01-02T00:00:00Z"; treat them as local midnight.
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' && s[11:19] == "00:00:00" {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}
