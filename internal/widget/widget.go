// Package widget shares the running sleep session with out-of-process
// consumers such as shell prompts and desktop widgets through a small JSON
// file.
package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/javiermolinar/mellow/internal/sleep"
)

// Status is the shared snapshot of the running session.
type Status struct {
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Type      string     `json:"type"`
}

// Elapsed returns the time slept so far.
func (s Status) Elapsed(now time.Time) time.Duration {
	if s.EndDate != nil {
		return s.EndDate.Sub(s.StartDate)
	}
	return now.Sub(s.StartDate)
}

// File reads and writes the status snapshot at a fixed path.
type File struct {
	path string
}

// NewFile returns a File for path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the snapshot location.
func (f *File) Path() string {
	return f.path
}

// Publish writes the running session, or removes the snapshot when nothing
// is running.
func (f *File) Publish(kid *sleep.Kid, running *sleep.Entry) error {
	if kid == nil || running == nil {
		return f.Clear()
	}
	return f.Write(Status{
		Name:      kid.Name,
		StartDate: running.Start,
		EndDate:   running.End,
		Type:      running.Type.Label(),
	})
}

// Write stores s, replacing the file atomically.
func (f *File) Write(s Status) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating status directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".status-*.json")
	if err != nil {
		return fmt.Errorf("creating status file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing status file: %w", err)
	}
	return nil
}

// Read loads the snapshot. ok is false when nothing is running.
func (f *File) Read() (status Status, ok bool, err error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Status{}, false, nil
	}
	if err != nil {
		return Status{}, false, fmt.Errorf("reading status file: %w", err)
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return Status{}, false, fmt.Errorf("decoding status file: %w", err)
	}
	return status, true, nil
}

// Clear removes the snapshot.
func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing status file: %w", err)
	}
	return nil
}
