package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/javiermolinar/mellow/internal/logging"
)

// dbWatcher reports writes to the database file made by other processes,
// for example a CLI "mellow stop" while the day view is open.
type dbWatcher struct {
	w       *fsnotify.Watcher
	base    string
	changes chan struct{}
	log     logging.Logger
}

func watchDB(path string, log logging.Logger) (*dbWatcher, error) {
	if path == "" || path == ":memory:" {
		return nil, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	dw := &dbWatcher{
		w:       w,
		base:    filepath.Base(path),
		changes: make(chan struct{}, 1),
		log:     log,
	}
	go dw.loop()
	return dw, nil
}

// Changes delivers at most one pending notification at a time.
func (d *dbWatcher) Changes() <-chan struct{} {
	if d == nil {
		return nil
	}
	return d.changes
}

func (d *dbWatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.w.Close()
}

func (d *dbWatcher) loop() {
	defer close(d.changes)
	for {
		select {
		case ev, ok := <-d.w.Events:
			if !ok {
				return
			}
			if !isDBWrite(ev, d.base) {
				continue
			}
			select {
			case d.changes <- struct{}{}:
			default:
			}
		case err, ok := <-d.w.Errors:
			if !ok {
				return
			}
			d.log.Warnw("database watcher", "error", err)
		}
	}
}

// isDBWrite reports whether ev modified the database or its journal.
// The shared-memory index changes on reads too and is ignored.
func isDBWrite(ev fsnotify.Event, base string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Base(ev.Name)
	if !strings.HasPrefix(name, base) {
		return false
	}
	switch strings.TrimPrefix(name, base) {
	case "", "-wal", "-journal":
		return true
	default:
		return false
	}
}
