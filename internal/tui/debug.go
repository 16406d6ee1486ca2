package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/mellow/internal/logging"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "mellow-debug.log"

// newDebugLogger returns a JSON file logger when enabled, otherwise a no-op.
func newDebugLogger(enabled bool) (logging.Logger, error) {
	if !enabled {
		return logging.Nop(), nil
	}
	l, err := logging.New(logging.Options{Level: "debug", File: DebugLogPath, JSON: true})
	if err != nil {
		return nil, err
	}
	return l.With("component", "tui"), nil
}

func (m Model) logKey(msg tea.KeyMsg) {
	m.log.Debugw("key",
		"key", msg.String(),
		"mode", m.mode.String(),
		"cursor", m.cursor,
	)
}

func (m Model) logMsg(name string, kv ...any) {
	m.log.Debugw(name, kv...)
}
