package container

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/bet-user-api/app/db"
	"github.com/FACorreiaa/bet-user-api/config"
	"github.com/FACorreiaa/bet-user-api/internal/api/activitylog"
	"github.com/FACorreiaa/bet-user-api/internal/api/auth"
	"github.com/FACorreiaa/bet-user-api/internal/api/user"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	ActivityLog activitylog.Service
	UserService user.Service

	UserHandler *user.Handler
	AuthHandler *auth.Handler
	LogHandler  *activitylog.Handler

	BasicAuthMiddleware func(http.Handler) http.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	activityLog, err := activitylog.NewFileService(cfg.ActivityLog.Dir, cfg.ActivityLog.File, logger)
	if err != nil {
		logger.Error("Failed to initialize activity log", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewServiceImpl(userRepo, activityLog, logger)
	userHandler := user.NewHandler(userService, logger)

	authHandler := auth.NewHandler(userService, logger)
	logHandler := activitylog.NewHandler(activityLog, logger)

	basicAuth, err := auth.NewBasicAuth(cfg.Auth.Username, cfg.Auth.Password, logger)
	if err != nil {
		logger.Error("Failed to initialize basic auth", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Pool:                pool,
		ActivityLog:         activityLog,
		UserService:         userService,
		UserHandler:         userHandler,
		AuthHandler:         authHandler,
		LogHandler:          logHandler,
		BasicAuthMiddleware: basicAuth.Middleware,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
