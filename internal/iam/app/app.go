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

	"github.com/aussiebroadwan/gatekeeper/internal/iam/guard"
	httpapi "github.com/aussiebroadwan/gatekeeper/internal/iam/http"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/registry"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/service"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/session"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the IAM service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	redis    *goredis.Client
	registry registry.Registry
	signer   *jwtx.Signer

	// Services
	authService    *service.AuthService
	apiKeyService  *service.APIKeyService
	otpService     *service.OTPService
	sessionService *service.SessionService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatekeeper",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	signer, err := jwtx.NewSigner([]byte(cfg.SigningSecret), cfg.Issuer, cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initRedis()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("iam service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down iam service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close the shared Redis client
	if err := app.redis.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("iam service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRedis builds the shared Redis client. The refresh-token registry and
// the session store both run on it.
func (app *Application) initRedis() {
	app.redis = goredis.NewClient(&goredis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	app.registry = registry.NewRedis(app.redis, app.cfg.RefreshTokenTTL)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.otpService = &service.OTPService{
		Store:  app.db,
		Issuer: app.cfg.TOTPIssuer,
	}

	app.authService = &service.AuthService{
		Store:      app.db,
		Registry:   app.registry,
		Signer:     app.signer,
		OTP:        app.otpService,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.apiKeyService = &service.APIKeyService{Store: app.db}

	app.sessionService = &service.SessionService{
		Store:    app.db,
		Sessions: session.NewStore(app.redis, app.cfg.SessionTTL),
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	dispatcher := guard.NewDispatcher(map[guard.AuthType]guard.Strategy{
		guard.AuthTypeBearer: &guard.BearerStrategy{Verifier: app.signer},
		guard.AuthTypeAPIKey: &guard.APIKeyStrategy{Verifier: app.apiKeyService, Store: app.db},
		guard.AuthTypeNone:   guard.NoneStrategy{},
	})

	router := httpapi.NewRouter(
		dispatcher,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.APIKeyService = app.apiKeyService
	router.OTPService = app.otpService
	router.SessionService = app.sessionService
	router.SessionTTL = app.cfg.SessionTTL
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
