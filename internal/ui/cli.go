package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/config"
	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/db"
	"github.com/javiermolinar/mellow/internal/logging"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/summary"
	"github.com/javiermolinar/mellow/internal/tracker"
	"github.com/javiermolinar/mellow/internal/tui"
	"github.com/javiermolinar/mellow/internal/widget"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo    sleep.Repository
	config  *config.Config
	log     logging.Logger
	clock   dateutil.Clock
	out     io.Writer
	tracker *tracker.Tracker
	status  *widget.File
	root    *cobra.Command
	debug   bool // Enable debug logging
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used by the tracker and merger.
func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithClock sets the clock used for "now".
func WithClock(c dateutil.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// NewApp creates a new CLI application. A nil repo is opened lazily from
// the configured database path.
func NewApp(repo sleep.Repository, cfg *config.Config, opts ...Option) *App {
	a := &App{
		repo:   repo,
		config: cfg,
		log:    logging.Nop(),
		clock:  dateutil.SystemClock{},
		out:    os.Stdout,
		status: widget.NewFile(cfg.Storage.WidgetPath),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "mellow",
		Short: "Track a child's sleep and project the rest of the day",
		Long: `Mellow records naps and nights and fills the days around them with
an age-appropriate schedule of upcoming naps and bedtime.

Run without a subcommand to open the interactive day view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureTracker(cmd.Context()); err != nil {
				return err
			}
			table, err := schedule.TableFromConfig(a.config.Schedule.Brackets)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.tracker, tui.Options{
				Theme:  a.config.UI.Theme,
				DBPath: a.config.Storage.DBPath,
				Debug:  a.debug,
				Clock:  a.clock,
				Table:  table,
				Week: func(ctx context.Context, date time.Time, insight bool) (*summary.WeekSummary, error) {
					kid, err := a.selectedKid(ctx)
					if err != nil {
						return nil, err
					}
					return a.buildWeek(ctx, kid, date, insight, "")
				},
			})
		},
	}
	a.root.SetOut(a.out)

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Log keys and messages of the day view to mellow-debug.log")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.kidCmd())
	a.root.AddCommand(a.logCmd())
	a.root.AddCommand(a.startCmd())
	a.root.AddCommand(a.stopCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.statusCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "mellow %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.ExecuteContext(context.Background())
}

// SetArgs overrides the command line, for tests and scripting.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// Close releases the repository.
func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	return a.repo.Close()
}

func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	if dir := filepath.Dir(a.config.Storage.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	repo, err := db.New(a.config.Storage.DBPath, db.WithClock(a.clock))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	return nil
}

// ensureTracker opens the store and loads the selected kid's timeline.
func (a *App) ensureTracker(ctx context.Context) error {
	if a.tracker != nil {
		return nil
	}
	if err := a.ensureRepo(); err != nil {
		return err
	}
	merger, err := a.newMerger()
	if err != nil {
		return err
	}
	a.tracker = tracker.New(a.repo, merger,
		tracker.WithClock(a.clock),
		tracker.WithLogger(a.log),
		tracker.WithPublisher(a.status),
	)
	if _, err := a.tracker.Load(ctx); err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	return nil
}

func (a *App) newGenerator() (*schedule.Generator, error) {
	table, err := schedule.TableFromConfig(a.config.Schedule.Brackets)
	if err != nil {
		return nil, fmt.Errorf("sleep table: %w", err)
	}
	h, m := a.config.DefaultWakeClock()
	return schedule.NewGenerator(table,
		schedule.WithClock(a.clock),
		schedule.WithDefaultWake(h, m),
	), nil
}

func (a *App) newMerger() (*schedule.Merger, error) {
	gen, err := a.newGenerator()
	if err != nil {
		return nil, err
	}
	return schedule.NewMerger(gen,
		schedule.WithWindowDays(a.config.Schedule.WindowDays),
		schedule.WithMiddayHour(a.config.Schedule.MiddayHour),
		schedule.WithMergerClock(a.clock),
		schedule.WithLogger(a.log),
	), nil
}

// selectedKid returns the loaded kid or ErrNoKidSelected.
func (a *App) selectedKid(ctx context.Context) (*sleep.Kid, error) {
	if err := a.ensureTracker(ctx); err != nil {
		return nil, err
	}
	st := a.tracker.Snapshot()
	if st.Kid == nil {
		return nil, fmt.Errorf("%w: add one with 'mellow kid add'", sleep.ErrNoKidSelected)
	}
	return st.Kid, nil
}
