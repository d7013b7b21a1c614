// Package ui implements the coursegrid command line.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursegrid/internal/catalog"
	"github.com/javiermolinar/coursegrid/internal/config"
	"github.com/javiermolinar/coursegrid/internal/course"
	"github.com/javiermolinar/coursegrid/internal/db"
	"github.com/javiermolinar/coursegrid/internal/logging"
	"github.com/javiermolinar/coursegrid/internal/seats"
	"github.com/javiermolinar/coursegrid/internal/timetable"
	"github.com/javiermolinar/coursegrid/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command
	logger *zap.Logger

	noColor bool

	// Opened on first use and released by Close.
	store   *db.SQLite
	catalog *course.Catalog
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, logger: zap.NewNop()}

	a.root = &cobra.Command{
		Use:   "coursegrid",
		Short: "Plan a weekly course timetable",
		Long: `coursegrid loads a university course catalog and helps you build a
weekly timetable: add courses, see conflicts as they happen, and export the
result.

Run without a subcommand to open the interactive grid.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return a.initLogger(cmd == a.root)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.coursesCmd())
	a.root.AddCommand(a.deptsCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.removeCmd())
	a.root.AddCommand(a.clearCmd())
	a.root.AddCommand(a.gridCmd())
	a.root.AddCommand(a.creditsCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.reportCmd())
	a.root.AddCommand(a.serveCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coursegrid %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, for tests.
func (a *App) SetArgs(args ...string) {
	a.root.SetArgs(args)
}

// SetInput replaces stdin, for tests.
func (a *App) SetInput(in io.Reader) {
	a.root.SetIn(in)
}

// SetOutput redirects command output, for tests.
func (a *App) SetOutput(out, errOut io.Writer) {
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	_ = a.logger.Sync()
	if a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

// initLogger builds the logger. The full-screen UI only gets a file logger.
func (a *App) initLogger(terminal bool) error {
	build := logging.New
	if terminal {
		build = logging.NewForTerminal
	}
	logger, err := build(a.config.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// loadCatalog reads the configured catalog once per process.
func (a *App) loadCatalog(ctx context.Context) (*course.Catalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	cat, err := catalog.Load(ctx, a.config.Catalog.Source, a.logger)
	if err != nil {
		return nil, err
	}
	a.catalog = cat
	return cat, nil
}

func (a *App) openStore() (*timetable.Store, error) {
	if a.store == nil {
		s, err := db.New(a.config.Storage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.store = s
	}
	return timetable.NewStore(a.store, a.logger), nil
}

// openEngine loads the catalog and restores the saved timetable into a new
// engine.
func (a *App) openEngine(ctx context.Context) (*timetable.Engine, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	e := timetable.NewEngine(cat, timetable.WithStore(store), timetable.WithLogger(a.logger))
	res, err := e.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restoring timetable: %w", err)
	}
	if n := len(res.Unknown) + len(res.Conflicting); n > 0 {
		a.logger.Warn("saved courses skipped",
			zap.Strings("unknown", res.Unknown),
			zap.Strings("conflicting", res.Conflicting),
		)
	}
	return e, nil
}

// seatClient returns the live seat lookup, or nil when no backend is set.
func (a *App) seatClient() *seats.Client {
	if a.config.Backend.BaseURL == "" {
		return nil
	}
	src := seats.NewHTTPSource(a.config.Backend.BaseURL, a.config.BackendTimeout())
	return seats.NewClient(src, a.config.CacheTTL(), a.logger)
}

func (a *App) runTUI(ctx context.Context) error {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}

	e := timetable.NewEngine(cat, timetable.WithStore(store), timetable.WithLogger(a.logger))
	session := timetable.NewSession(e)
	defer session.Close()

	opts := []tui.ModelOption{tui.WithLogger(a.logger)}
	if sc := a.seatClient(); sc != nil {
		opts = append(opts, tui.WithSeats(sc))
	}
	return tui.Run(session, cat, a.config, opts...)
}

// lookupCourse resolves id against the catalog with a search hint.
func lookupCourse(cat *course.Catalog, id string) (*course.Course, error) {
	c, err := cat.Lookup(id)
	if errors.Is(err, course.ErrUnknownCourse) {
		return nil, fmt.Errorf("%w (try 'coursegrid courses --search')", err)
	}
	return c, err
}
