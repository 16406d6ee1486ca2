package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/mellow/internal/config"
	"github.com/javiermolinar/mellow/internal/logging"
	"github.com/javiermolinar/mellow/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	app := ui.NewApp(nil, cfg, ui.WithLogger(log))
	defer func() { _ = app.Close() }()
	return app.Execute()
}
