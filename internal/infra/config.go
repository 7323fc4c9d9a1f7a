package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Ledger storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL"`

	LedgerDriver   string          `env:"LEDGER_DRIVER" envDefault:"file"`
	LedgerPath     string          `env:"LEDGER_PATH" envDefault:"impact-log.json"`
	SQLitePath     string          `env:"SQLITE_PATH" envDefault:"impact.db"`
	DatabaseURL    string          `env:"DATABASE_URL"`
	DBMaxConns     int             `env:"DB_MAX_CONNS" envDefault:"10"`
	MigrateOnStart bool            `env:"MIGRATE_ON_START" envDefault:"true"`
	MonthlyGoal    decimal.Decimal `env:"LEDGER_MONTHLY_GOAL" envDefault:"500"`
	SeedDemo       bool            `env:"LEDGER_SEED_DEMO" envDefault:"false"`
	TimeZone       string          `env:"LEDGER_TIMEZONE" envDefault:"UTC"`

	AdminJWTSecret     string   `env:"ADMIN_JWT_SECRET"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	GeoIPDBPath        string   `env:"GEOIP_DB_PATH"`
	SEODefaultRegion   string   `env:"SEO_DEFAULT_REGION" envDefault:"US"`
	AmazonAssociateTag string   `env:"AMAZON_ASSOCIATE_TAG" envDefault:"pawshearts-20"`
	CatalogPath        string   `env:"CATALOG_PATH"`

	PinterestAccessToken string `env:"PINTEREST_ACCESS_TOKEN"`
	PinterestBoardID     string `env:"PINTEREST_BOARD_ID"`
	PinterestBoardName   string `env:"PINTEREST_BOARD_NAME" envDefault:"Pet Products That Help Animals"`
	PinterestBaseURL     string `env:"PINTEREST_BASE_URL" envDefault:"https://api.pinterest.com"`

	WorkerInline       bool          `env:"WORKER_INLINE" envDefault:"false"`
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"5s"`
	WorkerConcurrency  int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	WorkerBatchSize    int           `env:"WORKER_BATCH_SIZE" envDefault:"20"`

	HTTPReadTimeoutSeconds  int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPWriteTimeoutSeconds int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPIdleTimeoutSeconds  int `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
	RateLimitPerMin         int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"15s"`

	HTTPReadTimeout  time.Duration  `env:"-"`
	HTTPWriteTimeout time.Duration  `env:"-"`
	HTTPIdleTimeout  time.Duration  `env:"-"`
	Location         *time.Location `env:"-"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LedgerDriver = strings.ToLower(strings.TrimSpace(cfg.LedgerDriver))
	switch cfg.LedgerDriver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when LEDGER_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("LEDGER_DRIVER must be file, sqlite or postgres, got %q", cfg.LedgerDriver)
	}

	if cfg.MonthlyGoal.IsNegative() {
		return nil, fmt.Errorf("LEDGER_MONTHLY_GOAL cannot be negative")
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load LEDGER_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.WorkerBatchSize < 1 {
		cfg.WorkerBatchSize = 1
	}
	if cfg.WorkerPollInterval <= 0 {
		cfg.WorkerPollInterval = 5 * time.Second
	}

	cfg.HTTPReadTimeout = time.Second * time.Duration(cfg.HTTPReadTimeoutSeconds)
	cfg.HTTPWriteTimeout = time.Second * time.Duration(cfg.HTTPWriteTimeoutSeconds)
	cfg.HTTPIdleTimeout = time.Second * time.Duration(cfg.HTTPIdleTimeoutSeconds)

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
