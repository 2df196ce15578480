package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourceHTTP     = "http"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Telegram  TelegramConfig
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Catalog   CatalogConfig   `envPrefix:"CATALOG_"`
	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type TelegramConfig struct {
	Token    string  `env:"TELEGRAM_TOKEN"`
	Debug    bool    `env:"TELEGRAM_DEBUG" envDefault:"false"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
}

type CatalogConfig struct {
	Source  string        `env:"SOURCE" envDefault:"file"`
	Path    string        `env:"PATH" envDefault:"data/PapeisGramaturas.json"`
	URL     string        `env:"URL"`
	Token   string        `env:"TOKEN"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type RateLimitConfig struct {
	// Calculations per chat per window; 0 disables the limit.
	Limit  int64         `env:"LIMIT" envDefault:"30"`
	Window time.Duration `env:"WINDOW" envDefault:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Catalog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Database.validateIfUsed(cfg.Catalog.Source); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c CatalogConfig) Validate() error {
	switch c.Source {
	case CatalogSourceFile:
		if c.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required for catalog source %q", c.Source)
		}
	case CatalogSourceHTTP:
		if c.URL == "" {
			return fmt.Errorf("CATALOG_URL is required for catalog source %q", c.Source)
		}
	case CatalogSourcePostgres:
	default:
		return fmt.Errorf("unknown catalog source %q (want file, http or postgres)", c.Source)
	}
	return nil
}

func (c DatabaseConfig) validateIfUsed(source string) error {
	if source != CatalogSourcePostgres {
		return nil
	}
	return c.Validate()
}

func (c DatabaseConfig) Validate() error {
	if c.User == "" || c.Name == "" {
		return fmt.Errorf("DB_USER and DB_NAME are required for postgres")
	}
	return nil
}

// ValidateService checks what the long-running service needs on top of the
// catalog settings. The CLI does not need Telegram or Redis.
func (c *Config) ValidateService() error {
	if c.Telegram.Token == "" && c.HTTP.Addr == "" {
		return fmt.Errorf("nothing to run: set TELEGRAM_TOKEN and/or HTTP_ADDR")
	}
	if c.Telegram.Token != "" && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when the Telegram bot is enabled")
	}
	return nil
}

func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
