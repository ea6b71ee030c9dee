// Package database opens the dashboard's read connections and bootstraps the schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
)

//go:embed migrations
var migrationFS embed.FS

const defaultRetries = 5

type DatabaseConfig struct {
	ConnectionURL string
}

// WaitForDB waits for the database connection pool to be available.
func WaitForDB(ctx context.Context, pgpool *pgxpool.Pool, logger *zap.Logger) bool {
	maxAttempts := defaultRetries
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err := pgpool.Ping(ctx)
		if err == nil {
			logger.Info("Database connection successful")
			return true
		}

		waitDuration := time.Duration(attempts) * 200 * time.Millisecond
		logger.Warn("Database ping failed, retrying...",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("wait_duration", waitDuration),
			zap.Error(err),
		)
		if attempts < maxAttempts {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(waitDuration):
			}
		}
	}
	logger.Error("Database connection failed after multiple retries")
	return false
}

// RunMigrations creates the five dashboard tables when they are missing.
func RunMigrations(driver, databaseURL string, logger *zap.Logger) error {
	logger.Info("Running database migrations...", zap.String("driver", driver))

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	db, err := openForMigrations(driver, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var m *migrate.Migrate
	switch driver {
	case config.DriverSQLite:
		target, derr := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if derr != nil {
			return fmt.Errorf("failed to init sqlite migration driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", target)
	default:
		target, derr := migratepgx.WithInstance(db, &migratepgx.Config{})
		if derr != nil {
			return fmt.Errorf("failed to init pgx migration driver: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", src, "pgx5", target)
	}
	if err != nil {
		logger.Error("Failed to create migrator", zap.Error(err))
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("migrate up failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

func openForMigrations(driver, databaseURL string) (*sql.DB, error) {
	name := "pgx"
	if driver == config.DriverSQLite {
		name = "sqlite"
	}
	db, err := sql.Open(name, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed: %w", err)
	}
	return db, nil
}

// NewDatabaseConfig resolves the Postgres connection URL. An explicit URL wins over
// the individual host, port and credential settings.
func NewDatabaseConfig(cfg *config.Config, logger *zap.Logger) (*DatabaseConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres configuration is missing")
	}
	if cfg.Repositories.URL != "" {
		u, err := url.Parse(cfg.Repositories.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid database url: %w", err)
		}
		logger.Info("Database connection URL provided", zap.String("host", u.Host), zap.String("database", strings.TrimPrefix(u.Path, "/")))
		return &DatabaseConfig{ConnectionURL: cfg.Repositories.URL}, nil
	}

	pg := cfg.Repositories.Postgres
	if pg.Host == "" {
		errMsg := "Postgres configuration is missing or invalid"
		logger.Error(errMsg)
		return nil, fmt.Errorf("%s", errMsg)
	}

	query := url.Values{}
	query.Set("sslmode", pg.SSLMode)
	query.Set("timezone", "utc")
	query.Set("connect_timeout", "10")

	connURL := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(pg.Username, pg.Password),
		Host:     fmt.Sprintf("%s:%s", pg.Host, pg.Port),
		Path:     pg.DB,
		RawQuery: query.Encode(),
	}

	logger.Info("Database connection URL generated", zap.String("host", connURL.Host), zap.String("database", connURL.Path))
	return &DatabaseConfig{
		ConnectionURL: connURL.String(),
	}, nil
}

// Init initializes the pgxpool connection pool.
func Init(connectionURL string, pg config.PostgresConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger.Info("Initializing database connection pool...")
	cfg, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		logger.Error("Failed to parse database config", zap.Error(err))
		return nil, fmt.Errorf("failed parsing db config: %w", err)
	}
	if pg.MaxConns > 0 {
		cfg.MaxConns = pg.MaxConns
	}
	if pg.MinConns > 0 {
		cfg.MinConns = pg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to create database connection pool", zap.Error(err))
		return nil, fmt.Errorf("failed creating db pool: %w", err)
	}

	logger.Info("Database connection pool initialized")
	return pool, nil
}

// OpenSQLite opens a SQLite dataset file and checks it is reachable.
func OpenSQLite(path string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("SQLite database opened", zap.String("path", path))
	return db, nil
}
