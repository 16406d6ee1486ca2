package sleep

import (
	"testing"
	"time"
)

func TestTimelineNightEndingOn(t *testing.T) {
	night := Entry{ID: "n", Start: at(1, 19, 30), End: ptr(at(2, 6, 45)), Type: TypeNighttime}
	lateNight := Entry{ID: "late", Start: at(2, 20, 0), End: ptr(at(3, 13, 0)), Type: TypeNighttime}
	scheduled := Entry{ID: "s", Start: at(2, 19, 0), End: ptr(at(3, 7, 0)), Type: TypeNighttime, IsScheduled: true}
	nap := Entry{ID: "nap", Start: at(3, 5, 0), End: ptr(at(3, 6, 0)), Type: TypeNap}
	tl := Timeline{nap, scheduled, lateNight, night}

	got, ok := tl.NightEndingOn(at(2, 12, 0), 12)
	if !ok || got.ID != "n" {
		t.Errorf("expected night n, got %+v (ok=%v)", got, ok)
	}

	if got, ok := tl.NightEndingOn(at(3, 12, 0), 12); ok {
		t.Errorf("expected no anchor on day 3, got %+v", got)
	}
}

func TestTimelineSortByStart(t *testing.T) {
	tl := Timeline{
		{ID: "b", Start: at(2, 10, 0), IsScheduled: true},
		{ID: "c", Start: at(2, 9, 0)},
		{ID: "a", Start: at(2, 10, 0), IsScheduled: true},
		{ID: "z", Start: at(2, 10, 0)},
	}
	tl.SortByStart()

	want := []string{"c", "z", "a", "b"}
	for i, id := range want {
		if tl[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, tl[i].ID, id)
		}
	}
}

func TestEntryOverlapsUsesNowForRunning(t *testing.T) {
	now := at(2, 11, 0)
	running := Entry{ID: "r", Start: at(2, 10, 0)}
	before := Entry{ID: "s", Start: at(2, 10, 30), End: ptr(at(2, 11, 30)), IsScheduled: true}
	after := Entry{ID: "t", Start: at(2, 11, 0), End: ptr(at(2, 12, 0)), IsScheduled: true}

	if !running.Overlaps(before, now) {
		t.Error("expected overlap with running entry")
	}
	if running.Overlaps(after, now) {
		t.Error("expected no overlap once the running entry reaches now")
	}
}

func TestTimelineCloneIsDeep(t *testing.T) {
	tl := Timeline{{ID: "a", Start: at(2, 10, 0), End: ptr(at(2, 11, 0))}}
	c := tl.Clone()
	*c[0].End = at(2, 12, 0)
	if tl[0].End.Equal(at(2, 12, 0)) {
		t.Error("clone shares End pointer with original")
	}
}

func TestStats(t *testing.T) {
	now := at(3, 12, 0)
	sessions := []*Session{
		{Start: at(1, 20, 0), End: ptr(at(2, 6, 0)), Type: TypeNighttime},
		{Start: at(2, 10, 0), End: ptr(at(2, 11, 30)), Type: TypeNap},
		{Start: at(2, 14, 0), End: ptr(at(2, 14, 30)), Type: TypeNap},
		{Start: at(3, 11, 0), Type: TypeNap},
	}

	if got := TotalHours(sessions, now); got != 13 {
		t.Errorf("TotalHours = %v, want 13", got)
	}
	if got := DayStreak(sessions); got != 3 {
		t.Errorf("DayStreak = %d, want 3", got)
	}

	days := Summarize(sessions, at(1, 0, 0), at(3, 0, 0), now)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].NightTime != 10*time.Hour {
		t.Errorf("day 1 night = %v", days[0].NightTime)
	}
	if days[1].NapCount != 2 || days[1].NapTime != 2*time.Hour {
		t.Errorf("day 2 naps = %d / %v", days[1].NapCount, days[1].NapTime)
	}
	if days[2].Total() != time.Hour {
		t.Errorf("day 3 total = %v", days[2].Total())
	}
}
