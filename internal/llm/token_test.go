package llm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGitHubToken(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		got, err := LoadGitHubToken()
		if err != nil || got != "env-token" {
			t.Errorf("expected env-token, got %q (%v)", got, err)
		}
	})

	t.Run("hosts file", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("XDG_CONFIG_HOME", dir)
		path := filepath.Join(dir, "github-copilot", "hosts.json")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		content := `{"github.com": {"user": "me", "oauth_token": "file-token"}}`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		got, err := LoadGitHubToken()
		if err != nil || got != "file-token" {
			t.Errorf("expected file-token, got %q (%v)", got, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		if _, err := LoadGitHubToken(); err == nil {
			t.Error("expected error when no token is available")
		}
	})
}
