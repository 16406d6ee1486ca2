package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/mellow/internal/sleep"
)

const coachSystemPrompt = `You are a calm pediatric sleep coach. Reply with a single JSON object and nothing else.`

const coachPromptTemplate = `Review one week of sleep for %s (%d months old).
Recommended total sleep per day at this age: %s.

Daily log (date, naps, nap time, night time, total):
%s
Reply with JSON of this exact shape:
{"summary": "one sentence", "observations": ["..."], "guidance": ["..."]}

Rules:
- 2 to 4 observations, each tied to numbers from the log
- 1 to 3 guidance items a parent can act on tonight or tomorrow
- Keep every item under 90 characters
- Days with no data are missing logs, not missed sleep`

// ErrEmptyInsight is returned when the model replies without a summary.
var ErrEmptyInsight = errors.New("model returned an empty insight")

// Insight is the coach's reading of a week.
type Insight struct {
	Summary      string   `json:"summary"`
	Observations []string `json:"observations"`
	Guidance     []string `json:"guidance"`
}

// String renders the insight as plain text lines.
func (i Insight) String() string {
	var sb strings.Builder
	sb.WriteString(i.Summary)
	for _, o := range i.Observations {
		sb.WriteString("\n• " + o)
	}
	for _, g := range i.Guidance {
		sb.WriteString("\n➜ " + g)
	}
	return sb.String()
}

// WeekData is what the coach gets to see.
type WeekData struct {
	KidName     string
	AgeInMonths int
	Ideal       time.Duration
	Days        []sleep.DaySummary
}

// Coach turns a week of sleep totals into an Insight.
type Coach struct {
	client Client
}

// NewCoach creates a Coach backed by client.
func NewCoach(client Client) *Coach {
	return &Coach{client: client}
}

// ReviewWeek asks the model for observations and guidance on the week.
func (c *Coach) ReviewWeek(ctx context.Context, data WeekData) (*Insight, error) {
	prompt := fmt.Sprintf(coachPromptTemplate,
		data.KidName, data.AgeInMonths, formatDuration(data.Ideal), formatDays(data.Days))

	var insight Insight
	err := c.client.ChatJSON(ctx, []Message{
		{Role: RoleSystem, Content: coachSystemPrompt},
		{Role: RoleUser, Content: prompt},
	}, &insight)
	if err != nil {
		return nil, fmt.Errorf("reviewing week: %w", err)
	}
	if strings.TrimSpace(insight.Summary) == "" {
		return nil, ErrEmptyInsight
	}
	return &insight, nil
}

func formatDays(days []sleep.DaySummary) string {
	var sb strings.Builder
	for _, d := range days {
		if d.Total() == 0 {
			fmt.Fprintf(&sb, "%s  no data\n", d.Date.Format("Mon 2006-01-02"))
			continue
		}
		fmt.Fprintf(&sb, "%s  %d  %s  %s  %s\n",
			d.Date.Format("Mon 2006-01-02"),
			d.NapCount,
			formatDuration(d.NapTime),
			formatDuration(d.NightTime),
			formatDuration(d.Total()))
	}
	return sb.String()
}

// formatDuration renders d as 1h30m, 45m or 2h.
func formatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}
