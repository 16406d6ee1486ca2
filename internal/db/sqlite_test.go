package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/sleep"
)

var testNow = time.Date(2025, 1, 9, 12, 0, 0, 0, time.Local)

func at(day, h, m int) time.Time {
	return time.Date(2025, 1, day, h, m, 0, 0, time.Local)
}

func ptr(t time.Time) *time.Time { return &t }

func newTestKid(t *testing.T, repo *SQLite, name string) *sleep.Kid {
	t.Helper()
	k, err := sleep.NewKid(name, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), "19:30", "07:00", testNow)
	if err != nil {
		t.Fatalf("NewKid failed: %v", err)
	}
	if err := repo.CreateKid(context.Background(), k); err != nil {
		t.Fatalf("CreateKid failed: %v", err)
	}
	return k
}

func newTestSession(t *testing.T, kidID string, start time.Time, end *time.Time) *sleep.Session {
	t.Helper()
	s, err := sleep.NewSession(kidID, start, end, "", testNow)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestKidRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")

	got, err := repo.GetKid(ctx, k.ID)
	if err != nil {
		t.Fatalf("GetKid failed: %v", err)
	}
	if got.Name != "Ada" || got.SleepTime != "19:30" || got.WakeTime != "07:00" {
		t.Errorf("unexpected kid %+v", got)
	}
	if !got.DateOfBirth.Equal(k.DateOfBirth) {
		t.Errorf("date of birth = %v, want %v", got.DateOfBirth, k.DateOfBirth)
	}

	got.Name = "Ada Lovelace"
	got.WakeTime = "06:30"
	if err := repo.UpdateKid(ctx, got); err != nil {
		t.Fatalf("UpdateKid failed: %v", err)
	}
	kids, err := repo.ListKids(ctx)
	if err != nil {
		t.Fatalf("ListKids failed: %v", err)
	}
	if len(kids) != 1 || kids[0].Name != "Ada Lovelace" || kids[0].WakeTime != "06:30" {
		t.Errorf("unexpected kids after update: %+v", kids)
	}
}

func TestGetKid_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetKid(context.Background(), "missing")
	if !errors.Is(err, sleep.ErrKidNotFound) {
		t.Errorf("expected ErrKidNotFound, got %v", err)
	}
	err = repo.UpdateKid(context.Background(), &sleep.Kid{ID: "missing"})
	if !errors.Is(err, sleep.ErrKidNotFound) {
		t.Errorf("expected ErrKidNotFound on update, got %v", err)
	}
}

func TestCreateKidWithSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	k, err := sleep.NewKid("Bo", at(1, 0, 0), "", "", testNow)
	if err != nil {
		t.Fatalf("NewKid failed: %v", err)
	}
	seed, err := k.LastNight(testNow)
	if err != nil {
		t.Fatalf("LastNight failed: %v", err)
	}
	if err := repo.CreateKidWithSession(ctx, k, seed); err != nil {
		t.Fatalf("CreateKidWithSession failed: %v", err)
	}

	sessions, err := repo.ListSessions(ctx, k.ID)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Type != sleep.TypeNighttime {
		t.Fatalf("expected seeded night session, got %+v", sessions)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")

	s := newTestSession(t, k.ID, at(9, 10, 0), ptr(at(9, 11, 15)))
	if err := repo.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !got.Start.Equal(s.Start) || got.End == nil || !got.End.Equal(*s.End) {
		t.Errorf("unexpected bounds %v - %v", got.Start, got.End)
	}
	if got.Type != sleep.TypeNap || got.KidID != k.ID {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestCreateSession_Overlap(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")
	other := newTestKid(t, repo, "Bo")

	if err := repo.CreateSession(ctx, newTestSession(t, k.ID, at(9, 10, 0), ptr(at(9, 11, 0)))); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	tests := []struct {
		name    string
		kidID   string
		start   time.Time
		end     *time.Time
		wantErr error
	}{
		{"overlapping", k.ID, at(9, 10, 30), ptr(at(9, 11, 30)), sleep.ErrSessionOverlap},
		{"containing", k.ID, at(9, 9, 0), ptr(at(9, 12, 0)), sleep.ErrSessionOverlap},
		{"touching after", k.ID, at(9, 11, 0), ptr(at(9, 11, 30)), nil},
		{"touching before", k.ID, at(9, 9, 30), ptr(at(9, 10, 0)), nil},
		{"other kid", other.ID, at(9, 10, 0), ptr(at(9, 11, 0)), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.CreateSession(ctx, newTestSession(t, tc.kidID, tc.start, tc.end))
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateSession_SingleRunning(t *testing.T) {
	repo := newTestRepoWithClock(t, dateutil.NewFixedClock(testNow))
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")

	running := newTestSession(t, k.ID, at(9, 11, 0), nil)
	if err := repo.CreateSession(ctx, running); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	err := repo.CreateSession(ctx, newTestSession(t, k.ID, at(9, 11, 30), nil))
	if !errors.Is(err, sleep.ErrSessionInProgress) {
		t.Errorf("expected ErrSessionInProgress, got %v", err)
	}

	// A closed session inside the running interval collides with it.
	err = repo.CreateSession(ctx, newTestSession(t, k.ID, at(9, 11, 10), ptr(at(9, 11, 20))))
	if !errors.Is(err, sleep.ErrSessionOverlap) {
		t.Errorf("expected ErrSessionOverlap, got %v", err)
	}

	got, err := repo.InProgressSession(ctx, k.ID)
	if err != nil {
		t.Fatalf("InProgressSession failed: %v", err)
	}
	if got == nil || got.ID != running.ID {
		t.Errorf("expected running session %s, got %+v", running.ID, got)
	}
}

func TestReplaceSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")

	a := newTestSession(t, k.ID, at(9, 9, 0), ptr(at(9, 10, 0)))
	b := newTestSession(t, k.ID, at(9, 13, 0), ptr(at(9, 14, 0)))
	for _, s := range []*sleep.Session{a, b} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	// Growing a session within its own bounds does not conflict with itself.
	a.End = ptr(at(9, 10, 30))
	if err := repo.ReplaceSession(ctx, a); err != nil {
		t.Fatalf("ReplaceSession failed: %v", err)
	}

	a.End = ptr(at(9, 13, 30))
	if err := repo.ReplaceSession(ctx, a); !errors.Is(err, sleep.ErrSessionOverlap) {
		t.Errorf("expected ErrSessionOverlap, got %v", err)
	}

	got, err := repo.GetSession(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !got.End.Equal(at(9, 10, 30)) {
		t.Errorf("failed replace should not change stored end, got %v", got.End)
	}

	missing := newTestSession(t, k.ID, at(10, 9, 0), ptr(at(10, 10, 0)))
	if err := repo.ReplaceSession(ctx, missing); !errors.Is(err, sleep.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")

	s := newTestSession(t, k.ID, at(9, 9, 0), ptr(at(9, 10, 0)))
	if err := repo.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := repo.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := repo.GetSession(ctx, s.ID); !errors.Is(err, sleep.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := repo.DeleteSession(ctx, s.ID); !errors.Is(err, sleep.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestListSessionsByRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := newTestKid(t, repo, "Ada")

	for _, s := range []*sleep.Session{
		newTestSession(t, k.ID, at(7, 9, 0), ptr(at(7, 10, 0))),
		newTestSession(t, k.ID, at(8, 9, 0), ptr(at(8, 10, 0))),
		newTestSession(t, k.ID, at(8, 14, 0), ptr(at(8, 15, 0))),
		newTestSession(t, k.ID, at(9, 9, 0), ptr(at(9, 10, 0))),
	} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	got, err := repo.ListSessionsByRange(ctx, k.ID, at(8, 0, 0), at(9, 0, 0))
	if err != nil {
		t.Fatalf("ListSessionsByRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions on the 8th, got %d", len(got))
	}
	if !got[0].Start.Before(got[1].Start) {
		t.Error("expected sessions ordered by start")
	}
}

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v, err := repo.GetSetting(ctx, sleep.SettingSelectedKid)
	if err != nil || v != "" {
		t.Fatalf("expected empty setting, got %q, %v", v, err)
	}
	if err := repo.SetSetting(ctx, sleep.SettingSelectedKid, "a"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := repo.SetSetting(ctx, sleep.SettingSelectedKid, "b"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	v, err = repo.GetSetting(ctx, sleep.SettingSelectedKid)
	if err != nil || v != "b" {
		t.Errorf("expected b, got %q, %v", v, err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []string{
		"2025-01-09",
		"2025-01-09T00:00:00Z",
		"2025-01-09T10:30:00+01:00",
		"2025-01-09 10:30:00",
	}
	for _, in := range tests {
		if _, err := parseDate(in); err != nil {
			t.Errorf("parseDate(%q) failed: %v", in, err)
		}
	}
	if _, err := parseDate("yesterday"); err == nil {
		t.Error("expected error for unrecognized format")
	}
}

func newTestRepo(t *testing.T) *SQLite {
	t.Helper()
	return newTestRepoWithClock(t, dateutil.NewFixedClock(testNow))
}

func newTestRepoWithClock(t *testing.T, clock dateutil.Clock) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath, WithClock(clock))
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
