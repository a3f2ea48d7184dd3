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

	httpapi "github.com/aussiebroadwan/tabsession/internal/helloapi/http"
	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/aussiebroadwan/tabsession/pkg/jwtx"
	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application is the resource server: bearer tokens verified against the
// authority's JWK Set.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	decoder *jwtx.KeyfuncDecoder
	server  *http.Server
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "helloapi",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	endpoints := authsdk.KeycloakEndpoints(cfg.Issuer, cfg.Realm)
	if cfg.Discovery {
		ep, err := authsdk.Discover(ctx, &http.Client{Timeout: 10 * time.Second}, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to discover authority endpoints: %w", err)
		}
		endpoints = ep
	}
	if endpoints.JWKSURL == "" {
		return nil, errors.New("authority publishes no JWK Set")
	}

	dec, err := jwtx.NewJWKSDecoder(endpoints.JWKSURL, jwtx.VerifyOptions{
		Issuer:   endpoints.Issuer,
		Audience: cfg.Audience,
		Leeway:   cfg.ClockSkew,
	}, app.logger)
	if err != nil {
		return nil, err
	}
	app.decoder = dec

	router := httpapi.NewRouter(dec, cfg.ClientID, cfg.AdminRole, cfg.AllowedOrigins, app.logger)
	router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return app, nil
}

// Run serves until SIGINT or SIGTERM.
func (app *Application) Run() error {
	app.logger.Info("helloapi starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.decoder.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		return app.Shutdown()
	}
	return nil
}

func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()
	defer app.decoder.Close()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		return app.server.Close()
	}
	app.logger.Info("helloapi stopped")
	return nil
}
