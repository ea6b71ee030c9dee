package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type SQLiteConfig struct {
	Path string
}

type RepositoriesConfig struct {
	Driver string
	// URL, when set, wins over the Postgres components.
	URL           string
	Postgres      PostgresConfig
	SQLite        SQLiteConfig
	RunMigrations bool
}

type DashboardConfig struct {
	JoinPolicy    models.JoinPolicy
	CacheTTL      time.Duration
	SessionSecret string
}

type ObservabilityConfig struct {
	MetricsAddr  string
	OTLPEndpoint string
	PprofAddr    string
}

type Config struct {
	Repositories  RepositoriesConfig
	Dashboard     DashboardConfig
	Observability ObservabilityConfig
	ServerPort    string
	LogLevel      string
}

func Load() (*Config, error) {
	policy, err := models.ParseJoinPolicy(os.Getenv("JOIN_POLICY"))
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDurationOrDefault("CACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	runMigrations, err := getBoolOrDefault("DB_RUN_MIGRATIONS", false)
	if err != nil {
		return nil, err
	}

	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Driver: strings.ToLower(getEnvOrDefault("DATA_DRIVER", DriverPostgres)),
			URL:    firstEnv("SUPABASE_DATABASE_URL", "DATABASE_URL"),
			Postgres: PostgresConfig{
				Host:     host,
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "postgres"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", defaultSSLMode(host)),
				MaxConns: 10,
				MinConns: 1,
			},
			SQLite: SQLiteConfig{
				Path: getEnvOrDefault("SQLITE_PATH", "pariwisata.db"),
			},
			RunMigrations: runMigrations,
		},
		Dashboard: DashboardConfig{
			JoinPolicy:    policy,
			CacheTTL:      cacheTTL,
			SessionSecret: getEnvOrDefault("SESSION_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			PprofAddr:    os.Getenv("PPROF_ADDR"),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Repositories.Driver {
	case DriverPostgres:
		if c.Repositories.URL == "" && c.Repositories.Postgres.Password == "" {
			return fmt.Errorf("%w: DATABASE_URL or POSTGRES_PASSWORD environment variable is required", models.ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.Repositories.SQLite.Path == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite driver", models.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown DATA_DRIVER %q", models.ErrInvalidConfig, c.Repositories.Driver)
	}
	if c.Dashboard.CacheTTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL must be positive", models.ErrInvalidConfig)
	}
	if c.Dashboard.SessionSecret == "" {
		return fmt.Errorf("%w: SESSION_SECRET environment variable is required", models.ErrInvalidConfig)
	}
	return nil
}

// defaultSSLMode requires TLS for hosted Supabase databases only.
func defaultSSLMode(host string) string {
	if strings.Contains(host, "supabase") {
		return "require"
	}
	return "disable"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrInvalidConfig, key, err)
	}
	return d, nil
}

func getBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", models.ErrInvalidConfig, key, err)
	}
	return b, nil
}
