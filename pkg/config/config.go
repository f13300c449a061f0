package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "subtrackr"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	CORS  CORSConfig
	Flags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SUBTRACKR_APP_ENV" default:"dev"`
	Port         string `envconfig:"SUBTRACKR_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SUBTRACKR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUBTRACKR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the storage backend. The default is an in-process sqlite
// database, which keeps the tracker self-contained; postgres needs a DSN.
type DBConfig struct {
	Driver string `envconfig:"SUBTRACKR_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SUBTRACKR_DB_DSN" default:"file::memory:?cache=shared"`

	MaxOpenConns    int           `envconfig:"SUBTRACKR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUBTRACKR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUBTRACKR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUBTRACKR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	switch strings.ToLower(d.Driver) {
	case DriverPostgres:
		if strings.TrimSpace(d.DSN) == "" || strings.HasPrefix(d.DSN, "file:") {
			return fmt.Errorf("postgres driver requires SUBTRACKR_DB_DSN")
		}
	case DriverSQLite:
		if strings.TrimSpace(d.DSN) == "" {
			return fmt.Errorf("sqlite driver requires SUBTRACKR_DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
	return nil
}

func (d DBConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, DriverSQLite)
}

// RedisConfig is optional; when URL is empty the idempotency layer is skipped.
type RedisConfig struct {
	URL          string        `envconfig:"SUBTRACKR_REDIS_URL"`
	PoolSize     int           `envconfig:"SUBTRACKR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUBTRACKR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUBTRACKR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUBTRACKR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUBTRACKR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"SUBTRACKR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUBTRACKR_JWT_ISSUER" default:"subtrackr"`
	ExpirationMinutes int    `envconfig:"SUBTRACKR_JWT_EXPIRATION_MINUTES" default:"60"`
}

// validate catches a present-but-empty secret, which envconfig's required
// tag lets through.
func (j JWTConfig) validate() error {
	if strings.TrimSpace(j.Secret) == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SUBTRACKR_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SUBTRACKR_AUTO_MIGRATE" default:"true"`
}
