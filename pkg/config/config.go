package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	API        APIConfig
	LocalStore LocalStoreConfig
	Redis      RedisConfig
	Catalog    CatalogConfig
	Metrics    MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.LocalStore.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRAFTBAZAAR_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"CRAFTBAZAAR_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CRAFTBAZAAR_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CRAFTBAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the client at the storefront REST backend.
type APIConfig struct {
	BaseURL       string        `envconfig:"CRAFTBAZAAR_API_BASE_URL" required:"true"`
	Timeout       time.Duration `envconfig:"CRAFTBAZAAR_API_TIMEOUT" default:"10s"`
	RetryAttempts int           `envconfig:"CRAFTBAZAAR_API_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"CRAFTBAZAAR_API_RETRY_DELAY" default:"100ms"`
}

// LocalStoreConfig selects the guest-mode persistence backend.
type LocalStoreConfig struct {
	Driver    string `envconfig:"CRAFTBAZAAR_LOCAL_STORE_DRIVER" default:"sqlite"`
	DSN       string `envconfig:"CRAFTBAZAAR_LOCAL_STORE_DSN" default:"craftbazaar.db"`
	Namespace string `envconfig:"CRAFTBAZAAR_LOCAL_STORE_NAMESPACE" default:"default"`
	// AutoMigrate applies the embedded goose migrations on startup.
	AutoMigrate bool `envconfig:"CRAFTBAZAAR_LOCAL_STORE_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"CRAFTBAZAAR_LOCAL_STORE_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"CRAFTBAZAAR_LOCAL_STORE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"CRAFTBAZAAR_LOCAL_STORE_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRAFTBAZAAR_REDIS_URL"`
	Address      string        `envconfig:"CRAFTBAZAAR_REDIS_ADDR"`
	Password     string        `envconfig:"CRAFTBAZAAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRAFTBAZAAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRAFTBAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRAFTBAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRAFTBAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRAFTBAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRAFTBAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
	// GuestTTL bounds how long an idle guest cart survives in redis.
	GuestTTL time.Duration `envconfig:"CRAFTBAZAAR_REDIS_GUEST_TTL" default:"720h"`
}

type CatalogConfig struct {
	FixturePath     string `envconfig:"CRAFTBAZAAR_CATALOG_FIXTURE_PATH"`
	RemoteLimit     int    `envconfig:"CRAFTBAZAAR_CATALOG_REMOTE_LIMIT" default:"200"`
	FallbackEnabled bool   `envconfig:"CRAFTBAZAAR_CATALOG_FALLBACK_ENABLED" default:"true"`
	PageSize        int    `envconfig:"CRAFTBAZAAR_CATALOG_PAGE_SIZE" default:"12"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"CRAFTBAZAAR_METRICS_ENABLED" default:"false"`
}

func (l *LocalStoreConfig) validate() error {
	driver := strings.ToLower(strings.TrimSpace(l.Driver))
	switch driver {
	case LocalDriverMemory, LocalDriverRedis:
	case LocalDriverSQLite, LocalDriverPostgres:
		if strings.TrimSpace(l.DSN) == "" {
			return fmt.Errorf("%s is required for the %s local store", EnvLocalStoreDSN, driver)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvLocalStoreDriver, l.Driver)
	}
	l.Driver = driver
	return nil
}
