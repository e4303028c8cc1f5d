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

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/tabkeeper/internal/auth/http"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabkeeper/pkg/clock"
	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application owns the token service and everything it depends on.
type Application struct {
	cfg    *Config
	logger *slog.Logger

	db     store.Store
	hasher *cryptox.Hasher
	codec  *jwtx.Codec

	credentials         *service.Credentials
	tokenService        *service.TokenService
	authorizeService    *service.AuthorizeService
	userService         *service.UserService
	clientService       *service.ClientService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg *Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tabkeeper",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Writer:  cfg.LogWriter,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	app.codec, err = jwtx.NewCodec([]byte(cfg.Secret), cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.bootstrap(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tabkeeper starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
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

// Shutdown drains the HTTP server, stops housekeeping and closes the
// database. Live tokens and codes are dropped with the process.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tabkeeper...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	tokens := app.tokenService.ClearAllTokens()
	codes := app.authorizeService.ClearAllCodes()
	app.logger.Info("registries cleared", "tokens", tokens, "codes", codes)

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tabkeeper stopped")
	return nil
}

// initDatabase opens the credential store and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
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

func (app *Application) initServices() {
	clk := clock.Real()

	app.credentials = &service.Credentials{
		Users:   service.StoreUsers{Store: app.db},
		Clients: service.StoreClients{Store: app.db},
		Matcher: app.hasher,
	}

	app.authorizeService = &service.AuthorizeService{
		Codec:          app.codec,
		Clock:          clk,
		Credentials:    app.credentials,
		CodeTTL:        app.cfg.CodeTTL,
		ScopeDelimiter: app.cfg.ScopeDelimiter,
	}
	app.tokenService = &service.TokenService{
		Codec:          app.codec,
		Clock:          clk,
		Credentials:    app.credentials,
		Codes:          app.authorizeService,
		AccessTTL:      app.cfg.AccessTTL,
		RefreshTTL:     app.cfg.RefreshTTL,
		ScopeDelimiter: app.cfg.ScopeDelimiter,
	}

	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.clientService = &service.ClientService{Store: app.db, Hasher: app.hasher}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Hasher: app.hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.tokenService,
		app.authorizeService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// bootstrap seeds an empty store. The generated credentials are logged
// this one time only.
func (app *Application) bootstrap(ctx context.Context) error {
	done, err := app.bootstrapService.IsBootstrapped(ctx)
	if err != nil {
		return fmt.Errorf("failed to check bootstrap state: %w", err)
	}
	if done {
		return nil
	}

	ctx = slogx.WithContext(ctx, app.logger)
	res, err := app.bootstrapService.Bootstrap(ctx, domain.BootstrapData{
		AdminUsername: app.cfg.BootstrapUsername,
		AdminPassword: app.cfg.BootstrapPassword,
		ClientName:    "tabkeeper-admin",
		ClientScopes:  app.cfg.BootstrapScopes,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap: %w", err)
	}

	attrs := []any{
		slog.String("username", app.cfg.BootstrapUsername),
		slog.String("client_id", res.ClientID),
		slog.String("client_secret", res.ClientSecret),
	}
	if app.cfg.BootstrapPassword == "" {
		attrs = append(attrs, slog.String("password", res.AdminPassword))
	}
	app.logger.Warn("bootstrap credentials, store them now", attrs...)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.cfg.Issuer, BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.AuthorizeService = app.authorizeService
	router.Credentials = app.credentials
	router.ClientService = app.clientService
	router.UserService = app.userService
	router.HousekeepingService = app.housekeepingService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
