package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/accounts"
	"github.com/desertthunder/cineflix/internal/events"
	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/repositories"
	"github.com/desertthunder/cineflix/internal/services"
	"github.com/desertthunder/cineflix/internal/session"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/storage"
	"github.com/desertthunder/cineflix/internal/tasks"
	"github.com/desertthunder/cineflix/internal/watching"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and everything built on it are opened lazily by [Runner.ready], so commands that
// only print help or talk to a remote server never touch the profile.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	now        func() time.Time
	hashParams *argon2id.Params

	db        *sql.DB
	ownsDB    bool
	store     *storage.SQLiteStore
	bus       *events.Bus
	session   *session.Manager
	favorites *favorites.Manager
	watching  *watching.Manager
	accounts  *accounts.Service
	movies    services.MovieService
	api       *services.APIClient
	engine    *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB               // Opened from Config.Database.Path when nil
	Movies     services.MovieService // Built from Config.TMDB when nil and configured
	API        *services.APIClient   // Points at Config.Server when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Clock      func() time.Time
	HashParams *argon2id.Params
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		now:        opts.Clock,
		hashParams: opts.HashParams,
		db:         opts.DB,
		movies:     opts.Movies,
		api:        opts.API,
	}
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, plansCommand, favoritesCommand, watchingCommand,
		moviesCommand, serveCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig replaces the default config with the file at path, when one exists.
func (r *Runner) loadConfig(path string) {
	if path == "" {
		return
	}
	r.configPath = path
	if _, err := os.Stat(path); err != nil {
		return
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		return
	}
	r.config = config
}

// ready opens the profile database and wires the managers on first use.
func (r *Runner) ready(ctx context.Context) error {
	if r.session != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		r.db, r.ownsDB = db, true
	}

	if err := shared.RunMigrations(ctx, r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.store = storage.NewSQLiteStore(r.db)
	kv := storage.NewAdapter(r.store, shared.WithLogger(r.logger, "component", "storage"))
	r.bus = events.NewBus()

	r.favorites = favorites.NewManager(kv, r.bus,
		favorites.WithClock(r.now),
		favorites.WithLogger(shared.WithLogger(r.logger, "component", "favorites")))
	r.watching = watching.NewManager(kv, r.bus,
		watching.WithClock(r.now),
		watching.WithLogger(shared.WithLogger(r.logger, "component", "watching")))

	sessionOpts := []session.Option{
		session.WithClock(r.now),
		session.WithLogger(shared.WithLogger(r.logger, "component", "session")),
		session.WithDependents(r.favorites, r.watching),
	}
	if t := r.config.Session.Timeout.Duration; t > 0 {
		sessionOpts = append(sessionOpts, session.WithTimeout(t))
	}
	r.session = session.NewManager(kv, r.bus, sessionOpts...)

	accountOpts := []accounts.Option{
		accounts.WithClock(r.now),
		accounts.WithLogger(shared.WithLogger(r.logger, "component", "accounts")),
	}
	if r.hashParams != nil {
		accountOpts = append(accountOpts, accounts.WithHashParams(r.hashParams))
	}
	payments := accounts.NewMockPayments(r.config.Payments.MockDelay.Duration)
	r.accounts = accounts.NewService(repositories.NewAccountRepository(r.db), payments, accountOpts...)

	if r.movies == nil && r.config.TMDB.Configured() {
		client, err := services.NewTMDBClient(r.config.TMDB,
			services.WithHTTPClient(r.httpClient),
			services.WithTMDBLogger(shared.WithLogger(r.logger, "component", "tmdb")))
		if err != nil {
			return err
		}
		r.movies = client
	}
	r.engine = tasks.NewEngine(r.movies, r.favorites, shared.WithLogger(r.logger, "component", "tasks"))
	return nil
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.ownsDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

// catalog returns the movie service or explains how to configure one.
func (r *Runner) catalog() (services.MovieService, error) {
	if r.movies == nil {
		return nil, fmt.Errorf("%w: set tmdb.api_key or tmdb.access_token in %s", shared.ErrMissingConfig, r.configName())
	}
	return r.movies, nil
}

// client returns the HTTP API client, defaulting to the configured server address.
func (r *Runner) client() *services.APIClient {
	if r.api == nil {
		r.api = services.NewAPIClient("http://"+r.config.Server.Addr(), r.httpClient)
	}
	return r.api
}

// requireSession opens the profile and checks for an unexpired session, counting the call as activity.
func (r *Runner) requireSession(ctx context.Context) error {
	if err := r.ready(ctx); err != nil {
		return err
	}
	if !r.session.IsAuthenticated() {
		return fmt.Errorf("%w: run 'cineflix auth login' first", shared.ErrNotAuthenticated)
	}
	r.session.RefreshSession()
	return nil
}

func (r *Runner) configName() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
