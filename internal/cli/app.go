package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/spotlist"
	"github.com/aretw0/spotlist/internal/config"
	"github.com/aretw0/spotlist/pkg/adapters/file"
	"github.com/aretw0/spotlist/pkg/adapters/geo"
	"github.com/aretw0/spotlist/pkg/adapters/memory"
	"github.com/aretw0/spotlist/pkg/adapters/process"
	"github.com/aretw0/spotlist/pkg/adapters/redis"
	"github.com/aretw0/spotlist/pkg/adapters/sink"
	"github.com/aretw0/spotlist/pkg/observability"
	"github.com/aretw0/spotlist/pkg/persistence/middleware"
	"github.com/aretw0/spotlist/pkg/ports"
	"github.com/aretw0/spotlist/pkg/session"
)

// AppOptions are the command-line inputs that are not part of Config.
type AppOptions struct {
	// HooksPath points at the submit hook / locator command file.
	HooksPath string
	// Debug adds the audit hooks to the wizard.
	Debug bool
	// Metrics registers the Prometheus collectors.
	Metrics bool
}

// App is a fully wired wizard host: engine, sessions and their backing store.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Wizard   *spotlist.Wizard
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Hooks    *process.ConfigFile

	// Checks are the dependency probes exposed by /health.
	Checks map[string]func(context.Context) error

	closers []func() error
}

// NewApp builds the wizard and its session manager from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Checks: map[string]func(context.Context) error{},
	}

	hooks, err := process.LoadConfig(opts.HooksPath)
	if err != nil {
		return nil, err
	}
	app.Hooks = hooks

	var lifecycle []spotlist.Option
	if opts.Metrics {
		app.Metrics = observability.NewMetrics(true)
		lifecycle = append(lifecycle, spotlist.WithLifecycleHooks(app.Metrics.Hooks()))
	}
	if opts.Debug {
		lifecycle = append(lifecycle, spotlist.WithLifecycleHooks(observability.AuditHooks(logger)))
	}

	locator, err := createLocator(hooks)
	if err != nil {
		return nil, err
	}

	wizardOpts := []spotlist.Option{
		spotlist.WithLogger(logger),
		spotlist.WithLocator(locator),
		spotlist.WithLocateTimeout(cfg.Locate.Timeout),
		spotlist.WithHighAccuracy(cfg.Locate.HighAccuracy),
		spotlist.WithSubmissionSink(createSink(hooks, logger)),
	}
	if cfg.Catalog.Dir != "" {
		wizardOpts = append(wizardOpts, spotlist.WithCatalogDir(cfg.Catalog.Dir))
	}
	wizardOpts = append(wizardOpts, lifecycle...)

	app.Wizard, err = spotlist.New(wizardOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing wizard: %w", err)
	}

	store, sessionOpts, err := app.createStore()
	if err != nil {
		return nil, err
	}
	sessionOpts = append(sessionOpts,
		session.WithStarter(app.Wizard.Start),
		session.WithLogger(logger),
	)
	app.Sessions = session.NewManager(store, sessionOpts...)

	return app, nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// createStore picks the session backend. Redis sessions also take the
// distributed lock so that several hosts can serve the same session.
func (a *App) createStore() (ports.StateStore, []session.Option, error) {
	cfg := a.Config.Store

	var (
		store ports.StateStore
		opts  []session.Option
	)
	switch cfg.Backend {
	case config.BackendFile:
		store = file.New(cfg.Dir)
	case config.BackendRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, rs.Close)
		a.Checks["redis"] = rs.Check
		store = rs
		opts = append(opts,
			session.WithLocker(redis.NewLocker(rs.Client(), cfg.Redis.Prefix+"lock:")),
			session.WithLockTTL(cfg.LockTTL),
		)
	default:
		store = memory.NewStore()
	}

	if cfg.EncryptionKey == "" {
		return store, opts, nil
	}
	mw, err := encryption(cfg.EncryptionKey, cfg.FallbackKeys)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, mw), opts, nil
}

func encryption(active string, fallback []string) (middleware.Middleware, error) {
	key, err := middleware.ParseKey(active)
	if err != nil {
		return nil, fmt.Errorf("store encryption key: %w", err)
	}
	ec := middleware.EncryptionConfig{ActiveKey: key}
	for i, raw := range fallback {
		k, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("store fallback key %d: %w", i, err)
		}
		ec.FallbackKeys = append(ec.FallbackKeys, k)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

// createLocator prefers the configured locator command; otherwise the
// position comes from SPOTLIST_GEO_* (or geolocation is unavailable).
func createLocator(hooks *process.ConfigFile) (ports.Locator, error) {
	if hooks.Locator != nil {
		return process.NewLocator(*hooks.Locator), nil
	}
	return geo.FromEnv()
}

func createSink(hooks *process.ConfigFile, logger *slog.Logger) ports.SubmissionSink {
	logSink := sink.NewLog(logger)
	if len(hooks.Submit) == 0 {
		return logSink
	}
	runner := process.NewRunner(process.WithCommands(hooks.Submit...))
	return sink.Multi{logSink, process.NewSink(runner)}
}
