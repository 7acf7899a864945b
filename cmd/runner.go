package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bandfeed/internal/repositories"
	"github.com/desertthunder/bandfeed/internal/search"
	"github.com/desertthunder/bandfeed/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database is opened lazily so commands like `setup config` work without one.
type Runner struct {
	config   *shared.Config
	db       *sql.DB
	bands    *repositories.BandRepository
	resolver *search.Resolver
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	DB     *sql.DB // already migrated; opened from Config.Database when nil
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, bandsCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.bands != nil {
		r.resolver = r.newResolver()
	}
}

// Close releases the database if the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.bands, r.resolver = nil, nil, nil
	return err
}

// store returns the band repository, opening and migrating the configured database on first use.
func (r *Runner) store() (*repositories.BandRepository, error) {
	if r.bands != nil {
		return r.bands, nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenMigrated(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
	}
	r.attach(db)
	return r.bands, nil
}

// searcher returns the resolver bound to the band store.
func (r *Runner) searcher() (*search.Resolver, error) {
	if _, err := r.store(); err != nil {
		return nil, err
	}
	return r.resolver, nil
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.bands = repositories.NewBandRepository(db)
	r.resolver = r.newResolver()
}

func (r *Runner) newResolver() *search.Resolver {
	opts := search.OptionsFromConfig(r.config.Search)
	return search.NewResolver(r.bands, opts, shared.WithLogger(r.logger, "component", "resolver"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
