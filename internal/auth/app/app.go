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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	httpapi "github.com/campusid/auth/internal/auth/http"
	"github.com/campusid/auth/internal/auth/metrics"
	"github.com/campusid/auth/internal/auth/registry"
	"github.com/campusid/auth/internal/auth/registry/memory"
	"github.com/campusid/auth/internal/auth/registry/redis"
	"github.com/campusid/auth/internal/auth/registry/sqlstore"
	"github.com/campusid/auth/internal/auth/service"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/internal/auth/store/drivers/postgres"
	"github.com/campusid/auth/internal/auth/store/drivers/sqlite"
	"github.com/campusid/auth/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// migratingStore is a store that owns an embedded schema.
type migratingStore interface {
	store.Store
	ApplyMigrations() error
}

// Application encapsulates the auth service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	registry registry.Registry
	redis    *goredis.Client
	metrics  *metrics.Metrics

	tokenService        *service.TokenService
	authService         *service.AuthService
	accountService      *service.AccountService
	setupService        *service.SetupService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application from cfg. Resources opened before a failure are
// released.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "campus-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initRegistry(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeBackends()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wrapped HTTP handler.
func (app *Application) Handler() http.Handler { return app.server.Handler }

// Close releases the backends of an Application that was never Run.
func (app *Application) Close() error { return app.closeBackends() }

// Run starts the application and blocks until a signal arrives or the
// server fails.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	if app.setupService.Enabled() {
		app.logger.Warn("setup endpoint enabled; unset SETUP_TOKEN once the first administrator exists")
	}
	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.Database.Driver,
		"registry", app.cfg.Registry.Backend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		app.closeBackends()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains in-flight requests, stops housekeeping and closes the
// backends.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod.Std())
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  migratingStore
		err error
	)

	switch app.cfg.Database.Driver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.Database.URL)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.Database.File))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s database: %w", app.cfg.Database.Driver, err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

func (app *Application) initRegistry(ctx context.Context) error {
	switch app.cfg.Registry.Backend {
	case RegistryRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     app.cfg.Registry.RedisAddr,
			Password: app.cfg.Registry.RedisPassword,
			DB:       app.cfg.Registry.RedisDB,
		})
		reg := redis.New(client, "")
		if err := reg.Ping(ctx); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.Registry.RedisAddr, err)
		}
		app.redis = client
		app.registry = reg
	case RegistrySQL:
		app.registry = sqlstore.New(app.db)
	default:
		app.logger.Warn("refresh registry is in memory; sessions end when the process restarts")
		app.registry = memory.New()
	}
	return nil
}

func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  app.cfg.Token.Secret,
		RefreshSecret: app.cfg.Token.RefreshSecret,
		Issuer:        app.cfg.Token.Issuer,
		AccessTTL:     app.cfg.Token.AccessTTL.Std(),
		RefreshTTL:    app.cfg.Token.RefreshTTL.Std(),
	}, app.db, app.registry)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	tokens.Metrics = app.metrics
	app.tokenService = tokens

	app.authService = &service.AuthService{
		Store:   app.db,
		Tokens:  tokens,
		Metrics: app.metrics,
	}
	app.accountService = &service.AccountService{Store: app.db}
	app.setupService = &service.SetupService{
		Store: app.db,
		Token: app.cfg.SetupToken,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.registry,
		app.metrics,
		app.logger,
		app.cfg.HousekeepingInterval.Std(),
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.registry,
		app.metrics,
		app.cfg.RateLimit.Limits(),
		app.logger,
	)

	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.SetupService = app.setupService
	router.ApplyRoutes()

	app.router = router

	handler := cors.New(cors.Options{
		AllowedOrigins:   app.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", httpapi.SetupTokenHeader},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}).Handler(router)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
