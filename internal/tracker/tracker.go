// Package tracker holds the single source of truth for the selected kid, the
// selected date and the merged sleep timeline. Every change goes through one
// Tracker method, which persists it and republishes a complete State.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/logging"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
)

// ErrScheduledEntry is returned when an edit targets a projected entry.
var ErrScheduledEntry = errors.New("scheduled entries cannot be edited")

// State is a published snapshot. It is never mutated after publication.
type State struct {
	Kid          *sleep.Kid
	Kids         []*sleep.Kid
	SelectedDate time.Time // midday of the selected day
	AgeInMonths  int
	Timeline     sleep.Timeline
	InProgress   *sleep.Entry
	HoursTracked int
	DayStreak    int
	UpdatedAt    time.Time
}

// Day returns the timeline entries starting on the selected day.
func (s State) Day() sleep.Timeline {
	return s.Timeline.OnDay(s.SelectedDate)
}

func (s State) clone() State {
	out := s
	if s.Kid != nil {
		k := *s.Kid
		out.Kid = &k
	}
	out.Kids = make([]*sleep.Kid, len(s.Kids))
	for i, k := range s.Kids {
		kk := *k
		out.Kids[i] = &kk
	}
	out.Timeline = s.Timeline.Clone()
	if s.InProgress != nil {
		e := sleep.Timeline{*s.InProgress}.Clone()[0]
		out.InProgress = &e
	}
	return out
}

// Publisher receives the running session whenever the state changes.
type Publisher interface {
	Publish(kid *sleep.Kid, running *sleep.Entry) error
}

// Tracker serializes state changes. Only one change is applied at a time and
// each one ends with a full recompute of the timeline.
type Tracker struct {
	mu        sync.Mutex
	repo      sleep.Repository
	merger    *schedule.Merger
	clock     dateutil.Clock
	log       logging.Logger
	publisher Publisher
	state     State
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock.
func WithClock(c dateutil.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithPublisher registers a publisher notified after every change.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

// New creates a Tracker over repo.
func New(repo sleep.Repository, merger *schedule.Merger, opts ...Option) *Tracker {
	t := &Tracker{
		repo:   repo,
		merger: merger,
		clock:  dateutil.SystemClock{},
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.state.SelectedDate = dateutil.AdjustToMidday(t.clock.Now())
	return t
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Load reads kids from the store, restores the persisted kid selection and
// builds the timeline for today.
func (t *Tracker) Load(ctx context.Context) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kids, err := t.repo.ListKids(ctx)
	if err != nil {
		return State{}, fmt.Errorf("loading kids: %w", err)
	}
	t.state.Kids = kids

	selected, err := t.repo.GetSetting(ctx, sleep.SettingSelectedKid)
	if err != nil {
		return State{}, err
	}
	t.state.Kid = nil
	for _, k := range kids {
		if k.ID == selected {
			t.state.Kid = k
		}
	}
	if t.state.Kid == nil && len(kids) > 0 {
		t.state.Kid = kids[0]
	}

	return t.recompute(ctx, true)
}

// Refresh recomputes the timeline from the store.
func (t *Tracker) Refresh(ctx context.Context) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recompute(ctx, false)
}

// SelectDate moves the selection to date and reprojects the window around it.
func (t *Tracker) SelectDate(ctx context.Context, date time.Time) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.SelectedDate = dateutil.AdjustToMidday(date)
	return t.recompute(ctx, false)
}

// ShiftDate moves the selection by days.
func (t *Tracker) ShiftDate(ctx context.Context, days int) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.SelectedDate = dateutil.AdjustToMidday(dateutil.AddDays(t.state.SelectedDate, days))
	return t.recompute(ctx, false)
}

// SelectKid switches to the kid with id and persists the choice.
func (t *Tracker) SelectKid(ctx context.Context, id string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k, err := t.repo.GetKid(ctx, id)
	if err != nil {
		return State{}, err
	}
	if err := t.repo.SetSetting(ctx, sleep.SettingSelectedKid, k.ID); err != nil {
		return State{}, err
	}
	t.state.Kid = k
	t.log.Infow("kid selected", "kid", k.Name)
	return t.recompute(ctx, true)
}

// CreateKid stores a new kid with last night's sleep seeded from the usual
// bedtime and wake-up, then selects it.
func (t *Tracker) CreateKid(ctx context.Context, name string, dob time.Time, sleepTime, wakeTime string) (*sleep.Kid, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	k, err := sleep.NewKid(name, dob, sleepTime, wakeTime, now)
	if err != nil {
		return nil, err
	}
	seed, err := k.LastNight(now)
	if err != nil {
		return nil, err
	}
	if err := t.repo.CreateKidWithSession(ctx, k, seed); err != nil {
		return nil, err
	}
	if err := t.repo.SetSetting(ctx, sleep.SettingSelectedKid, k.ID); err != nil {
		return nil, err
	}

	kids, err := t.repo.ListKids(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading kids: %w", err)
	}
	t.state.Kids = kids
	t.state.Kid = k
	t.log.Infow("kid created", "kid", k.Name, "seed_start", seed.Start, "seed_end", seed.End)

	if _, err := t.recompute(ctx, true); err != nil {
		return nil, err
	}
	return k, nil
}

// UpdateKid stores changes to a kid's profile.
func (t *Tracker) UpdateKid(ctx context.Context, k *sleep.Kid) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.UpdateKid(ctx, k); err != nil {
		return State{}, err
	}
	kids, err := t.repo.ListKids(ctx)
	if err != nil {
		return State{}, fmt.Errorf("loading kids: %w", err)
	}
	t.state.Kids = kids
	if t.state.Kid != nil && t.state.Kid.ID == k.ID {
		t.state.Kid = k
	}
	return t.recompute(ctx, false)
}

// CreateSession records a session for the selected kid. An empty typ is
// classified from the session length.
func (t *Tracker) CreateSession(ctx context.Context, start, end *time.Time, typ sleep.SessionType) (*sleep.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Kid == nil {
		return nil, sleep.ErrNoKidSelected
	}
	now := t.clock.Now()
	if err := sleep.ValidateInput(start, end, now); err != nil {
		return nil, err
	}
	s, err := sleep.NewSession(t.state.Kid.ID, *start, end, typ, now)
	if err != nil {
		return nil, err
	}
	if err := t.repo.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	t.log.Infow("session created", "id", s.ID, "type", s.Type, "start", s.Start)

	if _, err := t.recompute(ctx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSession replaces the bounds and type of a recorded session.
func (t *Tracker) UpdateSession(ctx context.Context, id string, start, end *time.Time, typ sleep.SessionType) (*sleep.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if schedule.IsScheduledID(id) {
		return nil, ErrScheduledEntry
	}
	now := t.clock.Now()
	if err := sleep.ValidateInput(start, end, now); err != nil {
		return nil, err
	}
	s, err := t.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Start = *start
	s.End = end
	if typ == "" {
		typ = sleep.ClassifyType(s.Start, s.End, now)
	}
	s.Type = typ
	if err := t.repo.ReplaceSession(ctx, s); err != nil {
		return nil, err
	}
	t.log.Infow("session updated", "id", s.ID, "type", s.Type)

	if _, err := t.recompute(ctx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSession removes a recorded session.
func (t *Tracker) DeleteSession(ctx context.Context, id string) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if schedule.IsScheduledID(id) {
		return State{}, ErrScheduledEntry
	}
	if err := t.repo.DeleteSession(ctx, id); err != nil {
		return State{}, err
	}
	t.log.Infow("session deleted", "id", id)
	return t.recompute(ctx, false)
}

// StartSession opens a session for the selected kid starting now.
func (t *Tracker) StartSession(ctx context.Context) (*sleep.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Kid == nil {
		return nil, sleep.ErrNoKidSelected
	}
	now := t.clock.Now()
	s, err := sleep.NewSession(t.state.Kid.ID, now, nil, sleep.TypeNap, now)
	if err != nil {
		return nil, err
	}
	if err := t.repo.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	t.log.Infow("session started", "id", s.ID, "start", s.Start)

	if _, err := t.recompute(ctx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// EndSession closes the running session at now and reclassifies it by length.
func (t *Tracker) EndSession(ctx context.Context) (*sleep.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Kid == nil {
		return nil, sleep.ErrNoKidSelected
	}
	s, err := t.repo.InProgressSession(ctx, t.state.Kid.ID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, sleep.ErrNoSessionRunning
	}
	now := t.clock.Now()
	if err := s.Finish(now); err != nil {
		return nil, err
	}
	s.Type = sleep.ClassifyType(s.Start, s.End, now)
	if err := t.repo.ReplaceSession(ctx, s); err != nil {
		return nil, err
	}
	t.log.Infow("session ended", "id", s.ID, "type", s.Type, "duration", s.Duration(now))

	if _, err := t.recompute(ctx, false); err != nil {
		return nil, err
	}
	return s, nil
}

// recompute rebuilds the timeline from the store. Scheduled entries of the
// previous state are carried over unless the kid changed.
// Callers must hold t.mu.
func (t *Tracker) recompute(ctx context.Context, kidChanged bool) (State, error) {
	now := t.clock.Now()
	if t.state.SelectedDate.IsZero() {
		t.state.SelectedDate = dateutil.AdjustToMidday(now)
	}

	if t.state.Kid == nil {
		t.state.Timeline = nil
		t.state.InProgress = nil
		t.state.HoursTracked = 0
		t.state.DayStreak = 0
		t.state.UpdatedAt = now
		t.publish()
		return t.state.clone(), nil
	}

	sessions, err := t.repo.ListSessions(ctx, t.state.Kid.ID)
	if err != nil {
		return State{}, fmt.Errorf("loading sessions: %w", err)
	}

	current := make(sleep.Timeline, 0, len(sessions)+len(t.state.Timeline))
	for _, s := range sessions {
		current = append(current, sleep.FromSession(s))
	}
	if !kidChanged {
		current = append(current, t.state.Timeline.Scheduled()...)
	}

	age := t.state.Kid.AgeInMonths(now)
	tl := t.merger.Refresh(current, t.state.SelectedDate, age)

	t.state.AgeInMonths = age
	t.state.Timeline = tl
	t.state.InProgress = nil
	if e, ok := tl.InProgress(); ok {
		t.state.InProgress = &e
	}
	t.state.HoursTracked = int(sleep.TotalHours(sessions, now))
	t.state.DayStreak = sleep.DayStreak(sessions)
	t.state.UpdatedAt = now

	t.publish()

	t.log.Debugw("timeline recomputed",
		"kid", t.state.Kid.Name,
		"date", dateutil.FormatDate(t.state.SelectedDate),
		"entries", len(tl),
		"scheduled", len(tl.Scheduled()),
	)
	return t.state.clone(), nil
}

func (t *Tracker) publish() {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(t.state.Kid, t.state.InProgress); err != nil {
		t.log.Warnw("publishing status failed", "error", err)
	}
}
