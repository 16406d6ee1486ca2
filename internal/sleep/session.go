// Package sleep defines the core domain types for mellow: kids, recorded
// sleep sessions and the merged timeline entries shown to the user.
package sleep

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrStartMissing     = errors.New("start time is required to save the session")
	ErrFutureInProgress = errors.New("cannot save a session with a future start time and no end time")
	ErrEndBeforeStart   = errors.New("end time must be after start time")
	ErrInvalidType      = errors.New("session type must be 'nap' or 'nighttime'")
	ErrEmptyName        = errors.New("name cannot be empty")
)

// Domain errors.
var (
	ErrSessionOverlap    = errors.New("session overlaps with an existing session")
	ErrSessionInProgress = errors.New("a session is already in progress")
	ErrNoSessionRunning  = errors.New("no session in progress")
	ErrSessionNotFound   = errors.New("session not found")
	ErrKidNotFound       = errors.New("kid not found")
	ErrNoKidSelected     = errors.New("no kid selected")
)

// NightThreshold is the length above which a session counts as night sleep.
const NightThreshold = 3 * time.Hour

// SessionType is the kind of sleep block.
type SessionType string

const (
	TypeNap       SessionType = "nap"
	TypeNighttime SessionType = "nighttime"
)

// Valid returns true if the type is a known value.
func (t SessionType) Valid() bool {
	return t == TypeNap || t == TypeNighttime
}

// Label returns the human readable name of the type.
func (t SessionType) Label() string {
	switch t {
	case TypeNighttime:
		return "Nighttime Sleep"
	case TypeNap:
		return "Nap"
	default:
		return string(t)
	}
}

// ParseType parses "nap" or "nighttime" (also accepting "night").
func ParseType(s string) (SessionType, error) {
	switch s {
	case "nap":
		return TypeNap, nil
	case "nighttime", "night":
		return TypeNighttime, nil
	default:
		return "", ErrInvalidType
	}
}

// ClassifyType picks the session type from its length. A running session is
// measured up to now.
func ClassifyType(start time.Time, end *time.Time, now time.Time) SessionType {
	stop := now
	if end != nil {
		stop = *end
	}
	if stop.Sub(start) > NightThreshold {
		return TypeNighttime
	}
	return TypeNap
}

// Session is a recorded sleep interval. A nil End means the session is still
// running.
type Session struct {
	ID        string
	KidID     string
	Start     time.Time
	End       *time.Time
	Type      SessionType
	CreatedAt time.Time
}

// NewSession creates a session with a fresh ID. An empty typ is classified
// from the interval length.
func NewSession(kidID string, start time.Time, end *time.Time, typ SessionType, now time.Time) (*Session, error) {
	if start.IsZero() {
		return nil, ErrStartMissing
	}
	if end != nil && !end.After(start) {
		return nil, fmt.Errorf("%w: %s - %s", ErrEndBeforeStart,
			start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
	}
	if typ == "" {
		typ = ClassifyType(start, end, now)
	}
	if !typ.Valid() {
		return nil, ErrInvalidType
	}
	return &Session{
		ID:        uuid.NewString(),
		KidID:     kidID,
		Start:     start,
		End:       end,
		Type:      typ,
		CreatedAt: now,
	}, nil
}

// IsInProgress returns true if the session has not ended.
func (s *Session) IsInProgress() bool {
	return s.End == nil
}

// EndOr returns End, or now for a running session.
func (s *Session) EndOr(now time.Time) time.Time {
	if s.End != nil {
		return *s.End
	}
	return now
}

// Duration returns the session length measured up to now if running.
func (s *Session) Duration(now time.Time) time.Duration {
	return s.EndOr(now).Sub(s.Start)
}

// Finish closes a running session at t.
func (s *Session) Finish(t time.Time) error {
	if s.End != nil {
		return ErrNoSessionRunning
	}
	if !t.After(s.Start) {
		return ErrEndBeforeStart
	}
	end := t
	s.End = &end
	return nil
}
