package schedule

import (
	"errors"
	"testing"

	"github.com/javiermolinar/mellow/internal/sleep"
)

func TestKeyID(t *testing.T) {
	nap := Scheduled{Kind: KindNap, Ordinal: 2, Start: day(2, 11, 0), End: day(2, 12, 30)}
	night := Scheduled{Kind: KindNight, Start: day(2, 20, 45), End: day(3, 7, 0)}

	if got := KeyOf(nap).ID(); got != "scheduled_nap2_1704193200" {
		t.Errorf("nap id = %q", got)
	}
	if got := KeyOf(night).ID(); got != "scheduled_night_1704228300" {
		t.Errorf("night id = %q", got)
	}
}

func TestParseKey(t *testing.T) {
	k := Key{Kind: KindNap, Ordinal: 3, Start: 1704193200}
	got, err := ParseKey(k.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != k {
		t.Errorf("got %+v, want %+v", got, k)
	}

	for _, id := range []string{"", "abc", "scheduled_nap_123", "scheduled_nap0_1", "scheduled_dream_1", "scheduled_night_x"} {
		if _, err := ParseKey(id); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ParseKey(%q): expected ErrInvalidKey, got %v", id, err)
		}
	}
	if IsScheduledID("3f9a1c9e-8c42-4a4e-9d4c-2d0c3c1b2f10") {
		t.Error("uuid should not be a scheduled id")
	}
}

func TestScheduledEntry(t *testing.T) {
	s := Scheduled{Kind: KindNight, Start: day(2, 20, 0), End: day(3, 8, 0)}
	e := s.Entry()
	if !e.IsScheduled || e.Type != sleep.TypeNighttime || e.End == nil || !e.End.Equal(s.End) {
		t.Errorf("unexpected entry %+v", e)
	}
	if !IsScheduledID(e.ID) {
		t.Errorf("entry id %q should parse as scheduled", e.ID)
	}
}
