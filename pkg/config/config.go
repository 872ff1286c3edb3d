package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes all configuration environment variables.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MATERIALDESK_APP_ENV" default:"dev"`
	Port         string `envconfig:"MATERIALDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MATERIALDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MATERIALDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the persistence backend once at startup. The driver is an
// explicit choice; the service never falls back to another backend at runtime.
type DBConfig struct {
	DSN    string `envconfig:"MATERIALDESK_DB_DSN"`
	Driver string `envconfig:"MATERIALDESK_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"MATERIALDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MATERIALDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MATERIALDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MATERIALDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	switch d.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
	if d.Driver == "postgres" {
		if d.DSN == "" {
			return fmt.Errorf("database DSN is required for the postgres driver")
		}
		if _, err := url.Parse(d.DSN); err != nil {
			return fmt.Errorf("invalid database DSN: %w", err)
		}
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MATERIALDESK_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MATERIALDESK_REDIS_URL"`
	Address      string        `envconfig:"MATERIALDESK_REDIS_ADDR"`
	Password     string        `envconfig:"MATERIALDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"MATERIALDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MATERIALDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MATERIALDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MATERIALDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MATERIALDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MATERIALDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"MATERIALDESK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MATERIALDESK_JWT_ISSUER" required:"true"`
}
