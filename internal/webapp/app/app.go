package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aussiebroadwan/tabsession/internal/metrics"
	"github.com/aussiebroadwan/tabsession/internal/store"
	"github.com/aussiebroadwan/tabsession/internal/store/drivers/memory"
	"github.com/aussiebroadwan/tabsession/internal/store/drivers/redis"
	"github.com/aussiebroadwan/tabsession/internal/store/drivers/sqlite"
	httpapi "github.com/aussiebroadwan/tabsession/internal/webapp/http"
	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/cryptox"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/session"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the local web client: one session manager behind an HTTP
// server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	blobs     store.Blobs
	authority *authsdk.Client
	decoder   jwtx.Decoder
	registry  *prometheus.Registry

	// Services
	manager             *session.Manager
	housekeeper *store.Housekeeper // nil for redis, which expires keys itself

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tabsession",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}

	if err := app.initAuthority(ctx); err != nil {
		_ = app.blobs.Close()
		return nil, err
	}

	if err := app.initSession(); err != nil {
		app.closeDependencies()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.manager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start session manager: %w", err)
	}

	if app.housekeeper != nil {
		app.housekeeper.Start(context.Background())
	}

	app.logger.Info("tabsession starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application. The persisted session is
// kept so the next start restores it.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tabsession...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.manager.Stop()

	if app.housekeeper != nil {
		app.housekeeper.Stop()
	}

	if err := app.closeDependencies(); err != nil {
		app.logger.Error("error closing session store", "error", err)
		return err
	}

	app.logger.Info("tabsession stopped")
	return nil
}

func (app *Application) closeDependencies() error {
	if d, ok := app.decoder.(*jwtx.KeyfuncDecoder); ok {
		d.Close()
	}
	return app.blobs.Close()
}

// initStore opens the configured session store driver.
func (app *Application) initStore(ctx context.Context) error {
	switch app.cfg.StoreDriver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
		app.blobs = db
		app.housekeeper = store.NewHousekeeper(db, app.logger, app.cfg.HousekeepingInterval)

	case "redis":
		rdb, err := redis.Open(ctx, app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.blobs = rdb

	default:
		mem := memory.NewStore(nil)
		app.blobs = mem
		app.housekeeper = store.NewHousekeeper(mem, app.logger, app.cfg.HousekeepingInterval)
	}

	if len(app.cfg.MasterKey) == 0 && app.cfg.StoreDriver != "memory" {
		app.logger.Warn("SESSION_MASTER_KEY not set, persisted sessions will not survive a restart")
	}

	app.logger.Info("session store ready", "driver", app.cfg.StoreDriver)
	return nil
}

// initAuthority resolves the authority endpoints and the token decoder.
func (app *Application) initAuthority(ctx context.Context) error {
	hc := &http.Client{Timeout: 10 * time.Second}

	var endpoints authsdk.Endpoints
	if app.cfg.Discovery {
		ep, err := authsdk.Discover(ctx, hc, app.cfg.Issuer)
		if err != nil {
			return fmt.Errorf("failed to discover authority endpoints: %w", err)
		}
		endpoints = ep
	} else {
		endpoints = authsdk.KeycloakEndpoints(app.cfg.Issuer, app.cfg.Realm)
	}
	app.logger.Info("authority endpoints resolved",
		"issuer", endpoints.Issuer,
		"discovery", app.cfg.Discovery,
	)

	app.authority = authsdk.NewClient(authsdk.Config{
		Endpoints:    endpoints,
		ClientID:     app.cfg.ClientID,
		ClientSecret: app.cfg.ClientSecret,
		RedirectURL:  app.cfg.RedirectURL,
		Scopes:       app.cfg.Scopes,
		HTTPClient:   hc,
	})

	if !app.cfg.VerifySignatures || endpoints.JWKSURL == "" {
		app.logger.Warn("access token signatures are not verified")
		app.decoder = jwtx.UnverifiedDecoder{}
		return nil
	}

	dec, err := jwtx.NewJWKSDecoder(endpoints.JWKSURL, jwtx.VerifyOptions{
		Issuer: endpoints.Issuer,
		Leeway: app.cfg.ClockSkew,
	}, app.logger)
	if err != nil {
		return err
	}
	app.decoder = dec
	return nil
}

// initSession builds the session manager and its observers.
func (app *Application) initSession() error {
	sealer, err := cryptox.NewSealer(app.cfg.MasterKey, "session")
	if err != nil {
		return fmt.Errorf("failed to initialize session sealer: %w", err)
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observer := metrics.New(app.registry)
	if app.housekeeper != nil {
		app.housekeeper.OnSweep(observer.RecordSweep)
	}

	manager, err := session.New(app.authority,
		session.WithLogger(app.logger),
		session.WithDecoder(app.decoder),
		session.WithPersister(store.NewSessionStore(app.blobs, sealer, store.DefaultSessionKey)),
		session.WithObserver(observer),
		session.WithRefreshMargin(app.cfg.RefreshMargin),
		session.WithClockSkew(app.cfg.ClockSkew),
		session.WithInactivityTimeout(app.cfg.InactivityTimeout),
		session.WithRefreshRetries(app.cfg.RefreshRetries, app.cfg.RefreshBackoff),
		session.WithPostLogoutRedirect(app.cfg.PostLogoutURL),
	)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	app.manager = manager
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.manager,
		app.blobs,
		app.registry,
		BuildVersion,
		app.logger,
	)
	router.AdminRole = app.cfg.AdminRole
	if origin := app.cfg.WebOrigin(); origin != "" {
		router.Origins = []string{origin}
	}
	router.Resource = httpapi.NewResourceClient(app.cfg.ResourceURL, nil)
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
