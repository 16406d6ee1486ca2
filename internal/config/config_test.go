package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Schedule.DefaultWakeTime != "08:00" {
		t.Errorf("expected default_wake_time 08:00, got %s", cfg.Schedule.DefaultWakeTime)
	}
	if cfg.Schedule.WindowDays != 2 {
		t.Errorf("expected window_days 2, got %d", cfg.Schedule.WindowDays)
	}
	if cfg.Schedule.MiddayHour != 12 {
		t.Errorf("expected midday_hour 12, got %d", cfg.Schedule.MiddayHour)
	}
	if cfg.LLM.Provider != "copilot" {
		t.Errorf("expected provider copilot, got %s", cfg.LLM.Provider)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.DefaultWakeTime != "08:00" {
		t.Errorf("expected default wake time, got %s", cfg.Schedule.DefaultWakeTime)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[schedule]
default_wake_time = "07:00"
window_days = 3

[[schedule.brackets]]
min_months = 0
max_months = -1
ideal_hours = 12.0
naps = [60, 45]
wake_windows = [120, 180]

[llm]
provider = "ollama"
model = "llama3"

[storage]
db_path = "/tmp/test.db"

[log]
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.DefaultWakeTime != "07:00" {
		t.Errorf("expected default_wake_time 07:00, got %s", cfg.Schedule.DefaultWakeTime)
	}
	if cfg.Schedule.WindowDays != 3 {
		t.Errorf("expected window_days 3, got %d", cfg.Schedule.WindowDays)
	}
	if cfg.Schedule.MiddayHour != 12 {
		t.Errorf("expected midday_hour to keep default, got %d", cfg.Schedule.MiddayHour)
	}
	if len(cfg.Schedule.Brackets) != 1 {
		t.Fatalf("expected 1 bracket, got %d", len(cfg.Schedule.Brackets))
	}
	b := cfg.Schedule.Brackets[0]
	if b.MaxMonths != -1 || len(b.Naps) != 2 || b.WakeWindows[1] != 180 {
		t.Errorf("unexpected bracket %+v", b)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[schedule]
default_wake_time = "07:00"
window_days = 3

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("MELLOW_DEFAULT_WAKE_TIME", "06:30")
	t.Setenv("MELLOW_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("MELLOW_DB_PATH", "/tmp/env.db")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Schedule.DefaultWakeTime != "06:30" {
		t.Errorf("expected default_wake_time 06:30 from env, got %s", cfg.Schedule.DefaultWakeTime)
	}
	if cfg.Schedule.WindowDays != 3 {
		t.Errorf("expected window_days 3 from file, got %d", cfg.Schedule.WindowDays)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini from env, got %s", cfg.LLM.Model)
	}
	if cfg.Storage.DBPath != "/tmp/env.db" {
		t.Errorf("expected db_path /tmp/env.db from env, got %s", cfg.Storage.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"wake time without leading zero", func(c *Config) { c.Schedule.DefaultWakeTime = "8:00" }},
		{"wake time out of range", func(c *Config) { c.Schedule.DefaultWakeTime = "25:00" }},
		{"zero window", func(c *Config) { c.Schedule.WindowDays = 0 }},
		{"midday out of range", func(c *Config) { c.Schedule.MiddayHour = 24 }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bracket without ideal hours", func(c *Config) {
			c.Schedule.Brackets = []BracketConfig{{MinMonths: 0, MaxMonths: 3}}
		}},
		{"bracket max below min", func(c *Config) {
			c.Schedule.Brackets = []BracketConfig{{MinMonths: 5, MaxMonths: 3, IdealHours: 12}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_NamesTOMLKey(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"clock", func(c *Config) { c.Schedule.DefaultWakeTime = "7am" }, `schedule.default_wake_time must be in HH:MM format, got "7am"`},
		{"required", func(c *Config) { c.Storage.DBPath = "" }, "storage.db_path must be set"},
		{"oneof", func(c *Config) { c.Log.Level = "loud" }, "log.level must be one of debug info warn error"},
		{"max", func(c *Config) { c.Schedule.MiddayHour = 30 }, "schedule.midday_hour must be at most 23"},
		{"bracket", func(c *Config) {
			c.Schedule.Brackets = []BracketConfig{{MinMonths: 0, MaxMonths: 3}}
		}, "schedule.brackets[0].ideal_hours must be above 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFrom_LowercasesLogLevel(t *testing.T) {
	t.Setenv("MELLOW_LOG_LEVEL", "DEBUG")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %s", cfg.Log.Level)
	}
}

func TestDefaultWakeClock(t *testing.T) {
	cfg := Default()
	cfg.Schedule.DefaultWakeTime = "07:45"
	h, m := cfg.DefaultWakeClock()
	if h != 7 || m != 45 {
		t.Errorf("got %02d:%02d, want 07:45", h, m)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Schedule.WindowDays = 4
	cfg.UI.Theme = "latte"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Schedule.WindowDays != 4 || loaded.UI.Theme != "latte" {
		t.Errorf("unexpected round trip result: %+v", loaded)
	}
}
