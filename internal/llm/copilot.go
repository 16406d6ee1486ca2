package llm

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go/option"
)

const (
	copilotBaseURL = "https://api.githubcopilot.com"
	userAgent      = "Mellow/1.0"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"
)

// copilotTokenURL is a variable so tests can point it at a local server.
var copilotTokenURL = "https://api.github.com/copilot_internal/v2/token"

var errTokenExpired = errors.New("copilot token is already expired")

// copilotToken is the short-lived bearer handed out for a GitHub token.
type copilotToken struct {
	Value     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (t copilotToken) expired(now time.Time) bool {
	return t.ExpiresAt != 0 && !now.Before(time.Unix(t.ExpiresAt, 0))
}

// dialCopilot trades the user's GitHub token for a Copilot bearer and
// returns a chat client using it. A nil hc uses a client with a 30s timeout.
func dialCopilot(ctx context.Context, hc *http.Client, model string) (*completions, error) {
	github, err := LoadGitHubToken()
	if err != nil {
		return nil, fmt.Errorf("loading GitHub token: %w", err)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	tok, err := fetchCopilotToken(ctx, hc, github)
	if err != nil {
		return nil, fmt.Errorf("exchanging token: %w", err)
	}

	return newCompletions("copilot", cmp.Or(model, DefaultModel), copilotBaseURL,
		option.WithAPIKey(tok.Value),
		option.WithHeader("Editor-Version", userAgent),
		option.WithHeader("Editor-Plugin-Version", userAgent),
		option.WithHeader("Copilot-Integration-Id", "vscode-chat"),
	), nil
}

func fetchCopilotToken(ctx context.Context, hc *http.Client, github string) (copilotToken, error) {
	var tok copilotToken

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, copilotTokenURL, nil)
	if err != nil {
		return tok, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+github)
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return tok, fmt.Errorf("making request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return tok, fmt.Errorf("token exchange failed (status %d): %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return tok, fmt.Errorf("decoding response: %w", err)
	}
	if tok.Value == "" {
		return tok, errors.New("token exchange returned an empty token")
	}
	if tok.expired(time.Now()) {
		return tok, errTokenExpired
	}
	return tok, nil
}
