package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tnguyen/storefront/internal/config"
	"github.com/tnguyen/storefront/internal/platform/logger"
	"github.com/tnguyen/storefront/internal/platform/postgres"
	"github.com/tnguyen/storefront/internal/service"
)

// application holds the shared dependencies of the server: configuration,
// the root logger, the database handle, and the resource services.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userService    *service.UserService
	productService *service.ProductService
}

// newApplication loads configuration, sets up logging, connects to the
// database, runs pending migrations, and wires the service layer.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("Configuration loaded",
		"env", cfg.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db, appLogger); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("Failed to close database after migration failure", "error", closeErr)
		}
		return nil, err
	}

	userStore := postgres.NewUserStore(db, appLogger)
	productStore := postgres.NewProductStore(db, appLogger)

	userService := service.NewUserService(userStore, appLogger)
	userService.WithTxDB(db)
	productService := service.NewProductService(productStore, appLogger)
	productService.WithTxDB(db)

	return &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		userService:    userService,
		productService: productService,
	}, nil
}

// run starts the HTTP server and blocks until shutdown completes.
func (app *application) run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
