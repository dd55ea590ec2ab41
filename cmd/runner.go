package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/player"
	"github.com/desertthunder/musicx/internal/repositories"
	"github.com/desertthunder/musicx/internal/services"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/desertthunder/musicx/internal/storage"
	"github.com/desertthunder/musicx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The local storage file and the cache database are opened on first use, so commands that need neither never touch them.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	httpClient *http.Client
	backend    player.Backend
	logger     *log.Logger
	output     io.Writer

	mu    sync.Mutex
	store *storage.Store
	db    *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.Client
	HTTPClient *http.Client
	Store      *storage.Store
	DB         *sql.DB
	Backend    player.Backend // audio backend for `play` and the TUI, built from [player] config when nil
	Logger     *log.Logger
	Output     io.Writer
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		backend:    opts.Backend,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		db:         opts.DB,
	}

	r.client = opts.Client
	if r.client == nil {
		r.client = services.NewClient(services.ClientConfig{
			BaseURL:    opts.Config.API.BaseURL,
			Timeout:    opts.Config.API.Timeout,
			RateLimit:  opts.Config.API.RateLimit,
			Burst:      opts.Config.API.Burst,
			Tokens:     services.NewSessionTokenSource(lazySession{r}),
			Logger:     opts.Logger,
			HTTPClient: opts.HTTPClient,
		})
	}
	return r
}

// lazySession reads the session through the runner so the storage file is only opened when a request needs a token.
type lazySession struct{ r *Runner }

func (l lazySession) Session() (*models.Session, error) {
	store, err := l.r.storage()
	if err != nil {
		return nil, err
	}
	return store.Session()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, songsCommand, playlistsCommand, historyCommand, playCommand,
		statsCommand, adminCommand, cacheCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.client.SetLogger(logger)
}

// storage opens the local session/history store on first use.
func (r *Runner) storage() (*storage.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		return r.store, nil
	}

	store, err := storage.Open(r.config.Storage.Path, storage.WithHistoryLimit(r.config.HistoryLimit()))
	if err != nil {
		return nil, err
	}
	r.store = store
	return store, nil
}

// database opens the cache database on first use, running pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	r.db = db
	return db, nil
}

// engine builds a task engine whose caches write to the local database.
func (r *Runner) engine() (*tasks.Engine, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	songs := repositories.NewSongCacheAdapter(repositories.NewSongRepository(db))
	playlists := repositories.NewPlaylistCacheAdapter(repositories.NewPlaylistRepository(db), songs)
	return tasks.NewEngine(r.client, songs, playlists, r.logger), nil
}

// session returns the stored session or an error telling the user to log in.
func (r *Runner) session() (*models.Session, error) {
	store, err := r.storage()
	if err != nil {
		return nil, err
	}
	session, err := store.Session()
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: run 'musicx auth login' again", err)
		}
		return nil, fmt.Errorf("%w: run 'musicx auth login' first", err)
	}
	return session, nil
}

// player builds a player recording history for the current user.
func (r *Runner) player() (*player.Player, error) {
	store, err := r.storage()
	if err != nil {
		return nil, err
	}
	if r.backend == nil {
		r.backend = player.NewExecBackend(r.config.Player.Command, r.config.Player.Args, r.logger)
	}
	session, _ := store.Session()
	return player.New(r.backend, player.WithHistory(store, session.HistoryKey()), player.WithLogger(r.logger)), nil
}

// Close releases the storage file and the cache database.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
		r.store = nil
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	return errors.Join(errs...)
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

// render writes data as JSON when --json is set and otherwise writes text.
func (r *Runner) render(cmd *cli.Command, data any, text string) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", text)
}

// progress starts a goroutine printing updates; the returned func closes the channel and waits for it to drain.
func (r *Runner) progress(print func(tasks.ProgressUpdate)) (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			print(update)
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

// parseID parses a numeric id argument named what.
func parseID(s, what string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, what)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, what, s)
	}
	return id, nil
}
