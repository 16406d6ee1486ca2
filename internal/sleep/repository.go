package sleep

import (
	"context"
	"time"
)

// Repository defines the storage interface for kids, sessions and settings.
type Repository interface {
	// CreateKid adds a new kid.
	CreateKid(ctx context.Context, kid *Kid) error

	// CreateKidWithSession adds a kid and its first session atomically.
	CreateKidWithSession(ctx context.Context, kid *Kid, s *Session) error

	// GetKid retrieves a kid by ID. Returns ErrKidNotFound if missing.
	GetKid(ctx context.Context, id string) (*Kid, error)

	// ListKids returns all kids ordered by name.
	ListKids(ctx context.Context) ([]*Kid, error)

	// UpdateKid replaces the stored kid with the same ID.
	UpdateKid(ctx context.Context, kid *Kid) error

	// CreateSession adds a session.
	// Returns ErrSessionOverlap if it intersects another session of the same
	// kid and ErrSessionInProgress if it is open while another one is running.
	CreateSession(ctx context.Context, s *Session) error

	// ReplaceSession updates the session with the same ID, applying the same
	// checks as CreateSession against every other session.
	ReplaceSession(ctx context.Context, s *Session) error

	// DeleteSession removes a session by ID.
	DeleteSession(ctx context.Context, id string) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*Session, error)

	// ListSessions returns every session of a kid ordered by start.
	ListSessions(ctx context.Context, kidID string) ([]*Session, error)

	// ListSessionsByRange returns the kid's sessions starting within
	// [start, end).
	ListSessionsByRange(ctx context.Context, kidID string, start, end time.Time) ([]*Session, error)

	// InProgressSession returns the running session of a kid, or nil.
	InProgressSession(ctx context.Context, kidID string) (*Session, error)

	// GetSetting returns a setting value, or "" if unset.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting stores a setting value.
	SetSetting(ctx context.Context, key, value string) error

	// Close releases any resources held by the repository.
	Close() error
}

// Setting keys.
const (
	SettingSelectedKid = "selected_kid"
	SettingDeviceID    = "device_id"
)
