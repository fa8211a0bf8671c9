package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is read from the process environment, after an optional .env file.
type Config struct {
	Port            string        `env:"PORT,default=8080"`
	GinMode         string        `env:"GIN_MODE,default=release"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	DBDriver          string        `env:"DB_DRIVER,default=postgres"`
	DBURL             string        `env:"DB_URL"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=25"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=100"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`
	AutoMigrate       bool          `env:"AUTO_MIGRATE,default=false"`
	RunMigrations     bool          `env:"RUN_MIGRATIONS,default=false"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	AllowedOrigins       string        `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	SlowRequestThreshold time.Duration `env:"SLOW_REQUEST_THRESHOLD,default=200ms"`
	RateLimitRPS         float64       `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst       int           `env:"RATE_LIMIT_BURST,default=20"`

	HistoryPruneMode     string `env:"HISTORY_PRUNE_MODE,default=length_gated"`
	HistorySweepSchedule string `env:"HISTORY_SWEEP_SCHEDULE,default=@hourly"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadDotEnv loads .env when present. A missing file is not an error.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load decodes the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.DBURL == "" {
			c.DBURL = "customerhub.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.HistoryPruneMode {
	case "length_gated", "strict":
	default:
		return fmt.Errorf("unsupported HISTORY_PRUNE_MODE %q", c.HistoryPruneMode)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}

	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// Origins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
