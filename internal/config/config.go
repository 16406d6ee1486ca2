// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "auto", "mocha", "macchiato", "frappe", "latte", "light"
}

// ScheduleConfig holds schedule projection settings.
type ScheduleConfig struct {
	DefaultWakeTime string          `toml:"default_wake_time" validate:"clock"`  // e.g., "08:00"
	MiddayHour      int             `toml:"midday_hour" validate:"min=1,max=23"` // a night must end before this hour to anchor the day
	WindowDays      int             `toml:"window_days" validate:"min=1"`        // days projected on each side of the selected date
	Brackets        []BracketConfig `toml:"brackets,omitempty" validate:"dive"`
}

// BracketConfig overrides one age bracket of the sleep table.
// A negative MaxMonths leaves the bracket open-ended.
type BracketConfig struct {
	MinMonths   int     `toml:"min_months" validate:"min=0"`
	MaxMonths   int     `toml:"max_months"`
	IdealHours  float64 `toml:"ideal_hours" validate:"gt=0"`
	Naps        []int   `toml:"naps"`         // nap lengths in minutes
	WakeWindows []int   `toml:"wake_windows"` // awake time before each nap, in minutes
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "copilot", "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // empty uses the provider default
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath     string `toml:"db_path" validate:"required"`
	WidgetPath string `toml:"widget_path"` // status snapshot for widgets and prompts
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
	File  string `toml:"file"` // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			DefaultWakeTime: "08:00",
			MiddayHour:      12,
			WindowDays:      2,
		},
		LLM: LLMConfig{
			Provider: "copilot",
			Model:    "gpt-4o",
		},
		Storage: StorageConfig{
			DBPath:     defaultDataPath("mellow.db"),
			WidgetPath: defaultDataPath("status.json"),
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// defaultDataPath returns a path inside the default data directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "mellow", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "mellow", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Storage.WidgetPath = expandPath(cfg.Storage.WidgetPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// envString and envInt bind environment variables to config fields.
// Environment variables take precedence over file config.
var (
	envString = map[string]func(*Config) *string{
		"MELLOW_DEFAULT_WAKE_TIME": func(c *Config) *string { return &c.Schedule.DefaultWakeTime },
		"MELLOW_LLM_PROVIDER":      func(c *Config) *string { return &c.LLM.Provider },
		"MELLOW_LLM_MODEL":         func(c *Config) *string { return &c.LLM.Model },
		"MELLOW_LLM_BASE_URL":      func(c *Config) *string { return &c.LLM.BaseURL },
		"MELLOW_DB_PATH":           func(c *Config) *string { return &c.Storage.DBPath },
		"MELLOW_WIDGET_PATH":       func(c *Config) *string { return &c.Storage.WidgetPath },
		"MELLOW_UI_THEME":          func(c *Config) *string { return &c.UI.Theme },
		"MELLOW_LOG_LEVEL":         func(c *Config) *string { return &c.Log.Level },
		"MELLOW_LOG_FILE":          func(c *Config) *string { return &c.Log.File },
	}
	envInt = map[string]func(*Config) *int{
		"MELLOW_WINDOW_DAYS": func(c *Config) *int { return &c.Schedule.WindowDays },
		"MELLOW_MIDDAY_HOUR": func(c *Config) *int { return &c.Schedule.MiddayHour },
	}
)

func applyEnvOverrides(cfg *Config) {
	for key, field := range envString {
		if v := os.Getenv(key); v != "" {
			*field(cfg) = v
		}
	}
	for key, field := range envInt {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*field(cfg) = n
		}
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return describe(err)
	}
	for i, b := range c.Schedule.Brackets {
		if b.MaxMonths >= 0 && b.MaxMonths < b.MinMonths {
			return fmt.Errorf("schedule.brackets[%d].max_months must not be below min_months", i)
		}
	}
	return nil
}

// describe turns the first validator failure into a message naming the
// TOML key.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "clock":
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, fe.Value())
	case "required":
		return fmt.Errorf("%s must be set", field)
	case "oneof":
		return fmt.Errorf("%s must be one of %s, got %q", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Errorf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Errorf("%s must be above %s, got %v", field, fe.Param(), fe.Value())
	case "max":
		return fmt.Errorf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	}
	return fmt.Errorf("%s is invalid: %w", field, fe)
}

// DefaultWakeClock returns the configured default wake-up hour and minute.
func (c *Config) DefaultWakeClock() (hour, minute int) {
	// Validate guarantees the format.
	hour, _ = strconv.Atoi(c.Schedule.DefaultWakeTime[0:2])
	minute, _ = strconv.Atoi(c.Schedule.DefaultWakeTime[3:5])
	return hour, minute
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
