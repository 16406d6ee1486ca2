package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/db"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/summary"
	"github.com/javiermolinar/mellow/internal/tracker"
	"github.com/javiermolinar/mellow/internal/tui/commands"
)

var testNow = time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)

type harness struct {
	tracker *tracker.Tracker
	clock   *dateutil.FixedClock
	repo    *db.SQLite
}

func newHarness(t *testing.T, withKid bool) *harness {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	clock := dateutil.NewFixedClock(testNow)
	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"), db.WithClock(clock))
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	gen := schedule.NewGenerator(schedule.DefaultTable(), schedule.WithClock(clock))
	merger := schedule.NewMerger(gen, schedule.WithMergerClock(clock))
	tr := tracker.New(repo, merger, tracker.WithClock(clock))
	if withKid {
		if _, err := tr.CreateKid(context.Background(), "Ada", testNow.AddDate(0, -8, 0), "19:30", "06:45"); err != nil {
			t.Fatalf("CreateKid failed: %v", err)
		}
	}
	return &harness{tracker: tr, clock: clock, repo: repo}
}

func (h *harness) model(opts Options) Model {
	opts.Clock = h.clock
	m := New(context.Background(), h.tracker, opts)
	m.width, m.height = 100, 30
	return m
}

// first runs cmd and returns its message. For batches only the first command
// runs, the rest are status timers.
func first(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		return batch[0]()
	}
	return msg
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func apply(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func plain(m Model) string {
	return ansi.Strip(m.View())
}

func TestView_NoKid(t *testing.T) {
	h := newHarness(t, false)
	m := h.model(Options{})

	if !strings.Contains(plain(m), "No kid yet") {
		t.Errorf("expected onboarding hint, got:\n%s", plain(m))
	}
}

func TestView_Day(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})
	m = apply(m, first(t, commands.Refresh(context.Background(), h.tracker)))

	out := plain(m)
	for _, want := range []string{"mellow", "Ada", "Mon Mar 10, 2025 · today · not logged", "○ Next nap", "07:45 - 08:45", "Next nighttime sleep", "19:45", "Slept 0m", "of 14h"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in view:\n%s", want, out)
		}
	}
	if got := len(strings.Split(m.View(), "\n")); got != 30 {
		t.Errorf("expected 30 lines, got %d", got)
	}
}

func TestModel_StartAndEndSession(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})

	m, cmd := press(m, "s")
	m = apply(m, first(t, cmd))
	if m.state.InProgress == nil {
		t.Fatal("expected running session")
	}
	if !strings.Contains(m.statusMsg, "Ada fell asleep at 14:00") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
	if !strings.Contains(plain(m), "since 14:00") {
		t.Errorf("expected running badge in view:\n%s", plain(m))
	}

	m, cmd = press(m, "s")
	m = apply(m, first(t, cmd))
	if m.err == nil || !strings.Contains(m.statusMsg, "already running") {
		t.Errorf("expected already running error, got %q", m.statusMsg)
	}

	h.clock.Advance(45 * time.Minute)
	m, cmd = press(m, "e")
	m = apply(m, first(t, cmd))
	if m.state.InProgress != nil {
		t.Error("expected no running session")
	}
	if !strings.Contains(m.statusMsg, "woke up after 45m (Nap)") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
}

func TestModel_DayNavigation(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})

	m, cmd := press(m, "h")
	m = apply(m, first(t, cmd))
	if !dateutil.SameDay(m.state.SelectedDate, testNow.AddDate(0, 0, -1)) {
		t.Errorf("expected previous day, got %v", m.state.SelectedDate)
	}
	if !strings.Contains(plain(m), "Sun Mar 9, 2025") {
		t.Errorf("expected Sunday header:\n%s", plain(m))
	}

	m, cmd = press(m, "t")
	m = apply(m, first(t, cmd))
	if !dateutil.SameDay(m.state.SelectedDate, testNow) {
		t.Errorf("expected today, got %v", m.state.SelectedDate)
	}
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, true)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	s, err := h.tracker.CreateSession(context.Background(), &start, &end, sleep.TypeNap)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	m := h.model(Options{})
	m = apply(m, first(t, commands.Refresh(context.Background(), h.tracker)))

	m.cursor = 0
	if e, _ := m.selected(); !e.IsScheduled {
		t.Fatalf("expected first entry to be scheduled, got %+v", e)
	}
	m, _ = press(m, "d")
	if m.mode != ModeNormal || !strings.Contains(m.statusMsg, "cannot be deleted") {
		t.Errorf("expected scheduled delete to be refused, mode=%s status=%q", m.mode, m.statusMsg)
	}

	for i, e := range m.day() {
		if e.ID == s.ID {
			m.cursor = i
		}
	}
	m, _ = press(m, "d")
	if m.mode != ModeConfirmDelete {
		t.Fatalf("expected confirm mode, got %s", m.mode)
	}
	if !strings.Contains(plain(m), "Delete this entry?") {
		t.Errorf("expected confirmation prompt:\n%s", plain(m))
	}

	m, _ = press(m, "n")
	if m.mode != ModeNormal {
		t.Fatalf("expected normal mode after cancel, got %s", m.mode)
	}

	m, _ = press(m, "d")
	m, cmd := press(m, "y")
	m = apply(m, first(t, cmd))
	for _, e := range m.state.Timeline.Real() {
		if e.ID == s.ID {
			t.Error("expected session to be deleted")
		}
	}
}

func TestModel_PromptLog(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})

	m, _ = press(m, ":")
	if m.mode != ModePrompt || m.prompt.Value() != "/" {
		t.Fatalf("expected prompt with slash, mode=%s value=%q", m.mode, m.prompt.Value())
	}
	m, _ = press(m, "lo")
	m, _ = press(m, "tab")
	if m.prompt.Value() != "/log " {
		t.Fatalf("expected autocomplete to /log, got %q", m.prompt.Value())
	}
	if !strings.Contains(plain(m), "/log") {
		t.Errorf("expected prompt in view:\n%s", plain(m))
	}
	m, _ = press(m, "10:00 11:00")
	m, cmd := press(m, "enter")
	if m.mode != ModeNormal {
		t.Errorf("expected prompt to close, got %s", m.mode)
	}
	m = apply(m, first(t, cmd))
	if !strings.Contains(m.statusMsg, "Logged Nap 10:00-11:00") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
	if len(m.state.Day().Real()) != 1 {
		t.Errorf("expected one recorded entry today, got %d", len(m.state.Day().Real()))
	}
}

func TestModel_PromptErrors(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})

	tests := []struct {
		line string
		want string
	}{
		{"/nope", "Unknown command /nope"},
		{"/log 10:00", "usage"},
		{"/date someday", "YYYY-MM-DD"},
		{"/kid Bob", `no kid matches "Bob"`},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			updated, _ := m.runPrompt(tt.line)
			got := updated.(Model).statusMsg
			if !strings.Contains(strings.ToLower(got), strings.ToLower(tt.want)) {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModel_WeekPanel(t *testing.T) {
	h := newHarness(t, true)
	kid := h.tracker.Snapshot().Kid

	var calls []bool
	week := func(_ context.Context, date time.Time, insight bool) (*summary.WeekSummary, error) {
		calls = append(calls, insight)
		start, end := dateutil.WeekRange(date)
		return &summary.WeekSummary{
			Start: start, End: end, Kid: kid, AgeInMonths: 8, Ideal: 14 * time.Hour,
			Days:  []sleep.DaySummary{{Date: start, NapCount: 2, NapTime: 2 * time.Hour, NightTime: 11 * time.Hour}},
			Stats: summary.WeekStats{TrackedDays: 1, DaysOnTarget: 0, AvgTotal: 13 * time.Hour},
		}, nil
	}
	m := h.model(Options{Week: week})

	m, cmd := press(m, "w")
	m = apply(m, first(t, cmd))
	if m.mode != ModeWeek {
		t.Fatalf("expected week mode, got %s", m.mode)
	}
	out := plain(m)
	for _, want := range []string{"WEEK  Mon Mar 10 - Sun Mar 16", "On target 0 of 1 days", "13h"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in week panel:\n%s", want, out)
		}
	}

	m, cmd = press(m, "h")
	msg := first(t, cmd).(commands.WeekSummaryMsg)
	if !msg.Summary.Start.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local)) {
		t.Errorf("expected previous week, got %v", msg.Summary.Start)
	}

	m, _ = press(m, "esc")
	if m.mode != ModeNormal {
		t.Errorf("expected normal mode, got %s", m.mode)
	}
	if len(calls) != 2 || calls[0] || calls[1] {
		t.Errorf("unexpected week calls %v", calls)
	}
}

func TestModel_WeekUnavailable(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})

	m, _ = press(m, "w")
	if m.mode != ModeNormal || !strings.Contains(m.statusMsg, "not available") {
		t.Errorf("expected unavailable status, got mode=%s status=%q", m.mode, m.statusMsg)
	}
}

func TestModel_ClearStatus(t *testing.T) {
	h := newHarness(t, true)
	m := h.model(Options{})

	m = apply(m, commands.StatusMsgCmd{Msg: "hello"})
	m = apply(m, commands.ClearStatusMsg{})
	if m.statusMsg != "hello" {
		t.Errorf("expected status to survive until its deadline, got %q", m.statusMsg)
	}

	h.clock.Advance(statusTimeout)
	m = apply(m, commands.ClearStatusMsg{})
	if m.statusMsg != "" {
		t.Errorf("expected status to clear, got %q", m.statusMsg)
	}
}

func TestModel_NextKid(t *testing.T) {
	h := newHarness(t, true)
	if _, err := h.tracker.CreateKid(context.Background(), "Bo", testNow.AddDate(0, -3, 0), "20:00", "07:00"); err != nil {
		t.Fatalf("CreateKid failed: %v", err)
	}
	m := h.model(Options{})

	m, cmd := press(m, "tab")
	m = apply(m, first(t, cmd))
	if m.state.Kid == nil || m.state.Kid.Name != "Ada" {
		t.Errorf("expected to cycle to Ada, got %+v", m.state.Kid)
	}

	id, err := m.findKid("b")
	if err != nil {
		t.Fatalf("findKid failed: %v", err)
	}
	for _, k := range m.state.Kids {
		if k.ID == id && k.Name != "Bo" {
			t.Errorf("expected Bo, got %s", k.Name)
		}
	}
}

func TestParseLogArgs(t *testing.T) {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	at := func(d, h, m int) time.Time { return time.Date(2025, 3, d, h, m, 0, 0, time.Local) }

	tests := []struct {
		name      string
		args      []string
		wantStart time.Time
		wantEnd   time.Time
		wantType  sleep.SessionType
		wantErr   bool
	}{
		{name: "nap by length", args: []string{"13:10", "14:25"}, wantStart: at(10, 13, 10), wantEnd: at(10, 14, 25), wantType: sleep.TypeNap},
		{name: "night rolls over", args: []string{"19:30", "06:45"}, wantStart: at(10, 19, 30), wantEnd: at(11, 6, 45), wantType: sleep.TypeNighttime},
		{name: "explicit type", args: []string{"10:00", "14:00", "nap"}, wantStart: at(10, 10, 0), wantEnd: at(10, 14, 0), wantType: sleep.TypeNap},
		{name: "missing end", args: []string{"10:00"}, wantErr: true},
		{name: "bad clock", args: []string{"10", "11:00"}, wantErr: true},
		{name: "bad type", args: []string{"10:00", "11:00", "siesta"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, typ, err := parseLogArgs(day, tt.args, testNow)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("got %v - %v, want %v - %v", start, end, tt.wantStart, tt.wantEnd)
			}
			if typ != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, typ)
			}
		})
	}
}

func TestEntryRow(t *testing.T) {
	at := func(d, h int) time.Time { return time.Date(2025, 3, d, h, 0, 0, 0, time.Local) }
	end := at(11, 7)
	napEnd := at(10, 11)

	tests := []struct {
		name  string
		entry sleep.Entry
		want  []string
	}{
		{
			name:  "overnight",
			entry: sleep.Entry{Start: at(10, 19), End: &end, Type: sleep.TypeNighttime},
			want:  []string{"■ Nighttime Sleep", "19:00 - 07:00+", "12h"},
		},
		{
			name:  "scheduled",
			entry: sleep.Entry{Start: at(10, 10), End: &napEnd, Type: sleep.TypeNap, IsScheduled: true},
			want:  []string{"○ Next nap", "10:00 - 11:00 ", "1h"},
		},
		{
			name:  "running",
			entry: sleep.Entry{Start: at(10, 13), Type: sleep.TypeNap},
			want:  []string{"● Nap", "13:00 - now", "1h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := entryRow(tt.entry, testNow)
			for _, w := range tt.want {
				if !strings.Contains(row, w) {
					t.Errorf("row %q missing %q", row, w)
				}
			}
		})
	}
}

func TestDayText(t *testing.T) {
	h := newHarness(t, true)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	end := start.Add(90 * time.Minute)
	if _, err := h.tracker.CreateSession(context.Background(), &start, &end, sleep.TypeNap); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	text := dayText(h.tracker.Snapshot(), testNow)
	if !strings.HasPrefix(text, "Ada · Mon Mar 10, 2025\n") {
		t.Errorf("unexpected header in %q", text)
	}
	if !strings.Contains(text, "■ Nap") || !strings.HasSuffix(text, "Slept 1h 30m\n") {
		t.Errorf("unexpected day text:\n%s", text)
	}
}
