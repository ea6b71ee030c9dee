package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/domain/dataset"
	database "github.com/FACorreiaa/tourism-dashboard/internal/db"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	dbPool   *pgxpool.Pool
	sqliteDB *sql.DB
	repo     dataset.Repository
	router   http.Handler
}

// New creates a new Server instance with the repository for the configured driver.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	var err error
	switch cfg.Repositories.Driver {
	case config.DriverSQLite:
		err = s.setupSQLite()
	default:
		err = s.setupPostgres(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return s, nil
}

// setupPostgres opens the pool and, when enabled, creates the dashboard tables.
func (s *Server) setupPostgres(ctx context.Context) error {
	s.logger.Info("Setting up Postgres connection")

	dbConfig, err := database.NewDatabaseConfig(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database configuration: %w", err)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, s.cfg.Repositories.Postgres, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}

	// An unreachable database is not fatal: every dashboard request reports it instead.
	if !database.WaitForDB(ctx, pool, s.logger) {
		s.logger.Warn("Starting without a reachable database")
	}

	if s.cfg.Repositories.RunMigrations {
		if err = database.RunMigrations(config.DriverPostgres, dbConfig.ConnectionURL, s.logger); err != nil {
			pool.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	s.dbPool = pool
	s.repo = dataset.NewPostgresRepository(pool, s.logger)
	s.logger.Info("Database setup completed successfully")
	return nil
}

func (s *Server) setupSQLite() error {
	path := s.cfg.Repositories.SQLite.Path
	if s.cfg.Repositories.RunMigrations {
		if err := database.RunMigrations(config.DriverSQLite, path, s.logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	db, err := database.OpenSQLite(path, s.logger)
	if err != nil {
		return err
	}
	s.sqliteDB = db
	s.repo = dataset.NewSQLiteRepository(db, s.logger)
	return nil
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Repository returns the data access adapter for the configured driver.
func (s *Server) Repository() dataset.Repository {
	return s.repo
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close closes all server resources
func (s *Server) Close() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.sqliteDB != nil {
		if err := s.sqliteDB.Close(); err != nil {
			s.logger.Warn("Failed to close SQLite database", zap.Error(err))
		}
	}
}
