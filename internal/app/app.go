package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blast-arena/server/internal/grid"
	"blast-arena/server/internal/hub"
	netserver "blast-arena/server/internal/net"
	"blast-arena/server/internal/persistence"
	"blast-arena/server/internal/telemetry"
	"blast-arena/server/internal/world"
	"blast-arena/server/logging"
	"blast-arena/server/logging/sinks"
)

// Options is the environment-driven server configuration.
type Options struct {
	Addr        string
	DatabaseURL string
	DataDir     string
	LevelFile   string
	LogSinks    []string
}

// OptionsFromEnv reads the configuration from the process environment.
//
//	ADDR               listen address, default :8080
//	ROOM_DATABASE_URL  PostgreSQL connection string; empty selects JSON storage
//	DATA_DIR           directory for the JSON store and event log, default data
//	LEVEL_FILE         optional levels JSON file; empty uses the built-ins
//	LOG_SINKS          comma-separated sink names, default console
func OptionsFromEnv() Options {
	opts := Options{
		Addr:        os.Getenv("ADDR"),
		DatabaseURL: os.Getenv("ROOM_DATABASE_URL"),
		DataDir:     os.Getenv("DATA_DIR"),
		LevelFile:   os.Getenv("LEVEL_FILE"),
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if raw := os.Getenv("LOG_SINKS"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				opts.LogSinks = append(opts.LogSinks, name)
			}
		}
	}
	if len(opts.LogSinks) == 0 {
		opts.LogSinks = []string{"console"}
	}
	return opts
}

// App assembles storage, logging, the hub, and the HTTP server.
type App struct {
	opts    Options
	router  *logging.Router
	store   persistence.Storage
	hub     *hub.Hub
	server  *http.Server
	metrics *logging.Metrics
	logger  telemetry.Logger

	eventLog *os.File
}

// New builds the full server. Callers own Run and Shutdown.
func New(opts Options) (*App, error) {
	a := &App{
		opts:    opts,
		metrics: logging.NewMetrics(),
		logger:  telemetry.WrapLogger(log.Default()),
	}

	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if err := a.initLogging(); err != nil {
		return nil, err
	}
	if err := a.initStorage(); err != nil {
		a.closeLogging()
		return nil, err
	}

	levels, err := a.loadLevels()
	if err != nil {
		a.closeStorage()
		a.closeLogging()
		return nil, err
	}

	a.hub = hub.New(hub.Config{
		Levels:          levels,
		Store:           a.store,
		Publisher:       a.router,
		Logger:          a.logger,
		Metrics:         telemetry.WrapMetrics(a.metrics),
		TickRate:        world.TickRate,
		CommandCapacity: 256,
		PerActorLimit:   8,
	})

	srv := netserver.NewServer(a.hub, a.store, a.logger)
	a.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a, nil
}

func (a *App) initLogging() error {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = a.opts.LogSinks

	var named []logging.NamedSink
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: sinks.NewConsole(os.Stdout)})
	}
	if cfg.HasSink("json") {
		path := cfg.JSON.FilePath
		if path == "" {
			path = filepath.Join(a.opts.DataDir, "events.ndjson")
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		a.eventLog = file
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(file, cfg.JSON.FlushInterval)})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, cfg, named)
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	a.router = router
	return nil
}

func (a *App) initStorage() error {
	if a.opts.DatabaseURL != "" {
		store, err := persistence.NewPostgresStore(a.opts.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres storage: %w", err)
		}
		a.store = store
		log.Printf("using PostgreSQL storage")
		return nil
	}

	store, err := persistence.NewJSONStore(filepath.Join(a.opts.DataDir, "store.json"))
	if err != nil {
		return fmt.Errorf("json storage: %w", err)
	}
	a.store = store
	log.Printf("using JSON storage in %s", a.opts.DataDir)
	return nil
}

func (a *App) loadLevels() ([]grid.Definition, error) {
	if a.opts.LevelFile == "" {
		return grid.BuiltinDefinitions(), nil
	}
	file, err := os.Open(a.opts.LevelFile)
	if err != nil {
		return nil, fmt.Errorf("open level file: %w", err)
	}
	defer file.Close()

	defs, err := grid.LoadDefinitions(file)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("level file %s contains no levels", a.opts.LevelFile)
	}
	return defs, nil
}

// Run serves until the context is canceled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", a.opts.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		a.shutdown()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.server.Shutdown(shutdownCtx)
		a.shutdown()
		return nil
	}
}

func (a *App) shutdown() {
	a.hub.Close()
	a.closeStorage()
	a.closeLogging()
}

func (a *App) closeStorage() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("closing storage: %v", err)
		}
		a.store = nil
	}
}

func (a *App) closeLogging() {
	if a.router != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.router.Close(ctx); err != nil {
			log.Printf("closing event router: %v", err)
		}
		cancel()
		a.router = nil
	}
	if a.eventLog != nil {
		a.eventLog.Close()
		a.eventLog = nil
	}
}
