package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/mellow/internal/sleep"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "raw json object",
			input:    `{"summary": "ok"}`,
			expected: `{"summary": "ok"}`,
		},
		{
			name:     "json with leading text",
			input:    `Here you go: {"guidance": ["nap earlier"]}`,
			expected: `{"guidance": ["nap earlier"]}`,
		},
		{
			name:     "json in code block",
			input:    "```json\n{\"summary\": \"ok\"}\n```",
			expected: `{"summary": "ok"}`,
		},
		{
			name:     "json in plain code block",
			input:    "```\n{\"summary\": \"ok\"}\n```",
			expected: `{"summary": "ok"}`,
		},
		{
			name:     "nested json with trailing prose",
			input:    `{"a": {"b": [1, 2]}} hope this helps`,
			expected: `{"a": {"b": [1, 2]}}`,
		},
		{
			name:     "no json",
			input:    "sorry",
			expected: "sorry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON(tt.input)
			if got != tt.expected {
				t.Errorf("extractJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{45 * time.Minute, "45m"},
		{2 * time.Hour, "2h"},
		{90 * time.Minute, "1h30m"},
		{89*time.Minute + 40*time.Second, "1h30m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// stubClient records the prompt and replies with a canned JSON string.
type stubClient struct {
	reply    string
	err      error
	messages []Message
}

func (s *stubClient) Chat(_ context.Context, messages []Message) (string, error) {
	s.messages = messages
	return s.reply, s.err
}

func (s *stubClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := s.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

func sampleWeek() WeekData {
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local)
	return WeekData{
		KidName:     "Ada",
		AgeInMonths: 8,
		Ideal:       14 * time.Hour,
		Days: []sleep.DaySummary{
			{Date: day, NapCount: 3, NapTime: 3 * time.Hour, NightTime: 11 * time.Hour},
			{Date: day.AddDate(0, 0, 1)},
		},
	}
}

func TestCoachReviewWeek(t *testing.T) {
	client := &stubClient{reply: "```json\n" +
		`{"summary": "Solid week", "observations": ["Mon hit 14h"], "guidance": ["Keep bedtime"]}` +
		"\n```"}

	insight, err := NewCoach(client).ReviewWeek(context.Background(), sampleWeek())
	if err != nil {
		t.Fatalf("ReviewWeek failed: %v", err)
	}
	if insight.Summary != "Solid week" {
		t.Errorf("expected summary 'Solid week', got %q", insight.Summary)
	}
	if len(insight.Observations) != 1 || len(insight.Guidance) != 1 {
		t.Errorf("unexpected insight %+v", insight)
	}

	if len(client.messages) != 2 || client.messages[0].Role != RoleSystem {
		t.Fatalf("expected system and user messages, got %+v", client.messages)
	}
	prompt := client.messages[1].Content
	for _, want := range []string{"Ada (8 months old)", "14h", "Mon 2025-01-06  3  3h  11h  14h", "Tue 2025-01-07  no data"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestCoachReviewWeek_Errors(t *testing.T) {
	t.Run("empty summary", func(t *testing.T) {
		client := &stubClient{reply: `{"summary": ""}`}
		_, err := NewCoach(client).ReviewWeek(context.Background(), sampleWeek())
		if !errors.Is(err, ErrEmptyInsight) {
			t.Errorf("expected ErrEmptyInsight, got %v", err)
		}
	})

	t.Run("client failure", func(t *testing.T) {
		boom := errors.New("boom")
		client := &stubClient{err: boom}
		_, err := NewCoach(client).ReviewWeek(context.Background(), sampleWeek())
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped client error, got %v", err)
		}
	})

	t.Run("not json", func(t *testing.T) {
		client := &stubClient{reply: "I cannot help with that"}
		if _, err := NewCoach(client).ReviewWeek(context.Background(), sampleWeek()); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestInsightString(t *testing.T) {
	in := Insight{Summary: "Good", Observations: []string{"a"}, Guidance: []string{"b"}}
	if got, want := in.String(), "Good\n• a\n➜ b"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
