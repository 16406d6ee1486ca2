package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/db"
	"github.com/javiermolinar/mellow/internal/sleep"
)

const exportVersion = 1

// Export is the YAML document written by 'export' and read by 'import'.
type Export struct {
	Version    int         `yaml:"version"`
	ExportedAt time.Time   `yaml:"exported_at"`
	From       string      `yaml:"from,omitempty"` // set when only a date range was exported
	To         string      `yaml:"to,omitempty"`
	Kids       []ExportKid `yaml:"kids"`
}

// ExportKid is one kid with all of its sessions.
type ExportKid struct {
	ID        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	Born      string          `yaml:"born"`
	SleepTime string          `yaml:"sleep_time"`
	WakeTime  string          `yaml:"wake_time"`
	Sessions  []ExportSession `yaml:"sessions"`
}

// ExportSession is one recorded session.
type ExportSession struct {
	ID    string     `yaml:"id"`
	Start time.Time  `yaml:"start"`
	End   *time.Time `yaml:"end,omitempty"`
	Type  string     `yaml:"type"`
}

// ImportResult counts what an import added and skipped.
type ImportResult struct {
	Kids     int
	Sessions int
	Skipped  int
}

func (a *App) exportCmd() *cobra.Command {
	var out, from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export kids and sessions as YAML",
		Example: `  mellow export > sleep.yaml
  mellow export --out=backup.yaml
  mellow export --from=2025-01-01 --to=2025-01-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rng *dateutil.DateRange
			if from != "" || to != "" {
				r, err := dateutil.NewDateRange(from, to)
				if err != nil {
					return err
				}
				rng = r
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}
			doc, err := exportAll(cmd.Context(), a.repo, a.clock.Now(), rng)
			if err != nil {
				return err
			}

			w := a.out
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := writeExport(w, doc); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(a.out, "Exported %d kids to %s\n", len(doc.Kids), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&from, "from", "", "First day to export (YYYY-MM-DD, default today when --to is set)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to export (YYYY-MM-DD, default --from)")
	return cmd
}

func (a *App) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import kids and sessions from a YAML export or another database",
		Long: `Import from a file written by 'mellow export', or from another Mellow
database (*.db). Kids and sessions that already exist are skipped, and
sessions that overlap existing ones are skipped too.`,
		Example: `  mellow import sleep.yaml
  mellow import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source path is a directory: %s", sourcePath)
			}

			var doc *Export
			if filepath.Ext(sourcePath) == ".db" {
				destPath, err := resolvePath(a.config.Storage.DBPath)
				if err != nil {
					return err
				}
				if sourcePath == destPath {
					return errors.New("source database matches current database")
				}
				doc, err = exportDatabase(cmd.Context(), sourcePath, a.clock.Now())
				if err != nil {
					return err
				}
			} else {
				f, err := os.Open(sourcePath)
				if err != nil {
					return fmt.Errorf("opening import file: %w", err)
				}
				defer func() { _ = f.Close() }()
				if doc, err = readExport(f); err != nil {
					return err
				}
			}

			res, err := importAll(cmd.Context(), a.repo, doc, a.clock.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d kids and %d sessions from %s (%d skipped)\n",
				res.Kids, res.Sessions, sourcePath, res.Skipped)
			return nil
		},
	}
}

// exportAll collects every kid of repo with its sessions. A non-nil rng
// keeps only the sessions starting within its days.
func exportAll(ctx context.Context, repo sleep.Repository, now time.Time, rng *dateutil.DateRange) (*Export, error) {
	kids, err := repo.ListKids(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing kids: %w", err)
	}
	doc := &Export{Version: exportVersion, ExportedAt: now}
	if rng != nil {
		doc.From = dateutil.FormatDate(rng.Start)
		doc.To = dateutil.FormatDate(rng.End)
	}
	for _, k := range kids {
		var sessions []*sleep.Session
		if rng != nil {
			sessions, err = repo.ListSessionsByRange(ctx, k.ID, rng.Start, dateutil.AddDays(rng.End, 1))
		} else {
			sessions, err = repo.ListSessions(ctx, k.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("listing sessions of %s: %w", k.Name, err)
		}
		ek := ExportKid{
			ID:        k.ID,
			Name:      k.Name,
			Born:      dateutil.FormatDate(k.DateOfBirth),
			SleepTime: k.SleepTime,
			WakeTime:  k.WakeTime,
		}
		for _, s := range sessions {
			ek.Sessions = append(ek.Sessions, ExportSession{
				ID:    s.ID,
				Start: s.Start,
				End:   s.End,
				Type:  string(s.Type),
			})
		}
		doc.Kids = append(doc.Kids, ek)
	}
	return doc, nil
}

// exportDatabase reads another database into an export document.
func exportDatabase(ctx context.Context, path string, now time.Time) (*Export, error) {
	source, err := db.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = source.Close() }()
	return exportAll(ctx, source, now, nil)
}

func writeExport(w io.Writer, doc *Export) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return enc.Close()
}

func readExport(r io.Reader) (*Export, error) {
	var doc Export
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if doc.Version != exportVersion {
		return nil, fmt.Errorf("unsupported export version %d", doc.Version)
	}
	return &doc, nil
}

// importAll adds the kids and sessions of doc that dest does not have yet.
func importAll(ctx context.Context, dest sleep.Repository, doc *Export, now time.Time) (ImportResult, error) {
	var res ImportResult
	for _, ek := range doc.Kids {
		born, err := dateutil.ParseDate(ek.Born)
		if err != nil {
			return res, fmt.Errorf("kid %s: %w", ek.Name, err)
		}

		_, err = dest.GetKid(ctx, ek.ID)
		switch {
		case errors.Is(err, sleep.ErrKidNotFound):
			kid, err := sleep.NewKid(ek.Name, born, ek.SleepTime, ek.WakeTime, now)
			if err != nil {
				return res, fmt.Errorf("kid %s: %w", ek.Name, err)
			}
			kid.ID = ek.ID
			if err := dest.CreateKid(ctx, kid); err != nil {
				return res, fmt.Errorf("importing kid %s: %w", ek.Name, err)
			}
			res.Kids++
		case err != nil:
			return res, err
		}

		for _, es := range ek.Sessions {
			if _, err := dest.GetSession(ctx, es.ID); err == nil {
				res.Skipped++
				continue
			} else if !errors.Is(err, sleep.ErrSessionNotFound) {
				return res, err
			}

			typ, err := sleep.ParseType(es.Type)
			if err != nil {
				return res, fmt.Errorf("session %s: %w", es.ID, err)
			}
			s := &sleep.Session{
				ID:        es.ID,
				KidID:     ek.ID,
				Start:     es.Start.Local(),
				Type:      typ,
				CreatedAt: now,
			}
			if es.End != nil {
				end := es.End.Local()
				s.End = &end
			}
			err = dest.CreateSession(ctx, s)
			switch {
			case errors.Is(err, sleep.ErrSessionOverlap), errors.Is(err, sleep.ErrSessionInProgress):
				res.Skipped++
			case err != nil:
				return res, fmt.Errorf("importing session %s: %w", es.ID, err)
			default:
				res.Sessions++
			}
		}
	}
	return res, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return absPath, nil
}
