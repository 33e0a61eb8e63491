package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8001"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StorageDriver selects the credential and task store: mongo or memory.
	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Auth  AuthConfig
	HTTP  HTTPConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	GoogleClientID string        `env:"GOOGLE_CLIENT_ID, required"`
	GoogleCertsURL string        `env:"GOOGLE_CERTS_URL, default=https://www.googleapis.com/oauth2/v3/certs"`
	OAuthTimeout   time.Duration `env:"OAUTH_TIMEOUT,    default=5s"`
	BcryptCost     int           `env:"BCRYPT_COST,      default=10"`
	HashWorkers    int           `env:"HASH_WORKERS,     default=0"`

	LoginMaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

type HTTPConfig struct {
	// AuthRateLimit is requests per second per client IP on /user routes.
	AuthRateLimit float64  `env:"AUTH_RATE_LIMIT, default=10"`
	CORSOrigins   []string `env:"CORS_ORIGINS,    default=*"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=todo_app"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=100"`
}

// RedisConfig configures the login throttle. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c *Config) validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StorageDriver)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("config: JWT_SECRET must not be blank")
	}
	if c.Auth.OAuthTimeout <= 0 {
		return fmt.Errorf("config: OAUTH_TIMEOUT must be positive")
	}
	if c.HTTP.AuthRateLimit < 0 {
		return fmt.Errorf("config: AUTH_RATE_LIMIT must not be negative")
	}
	return nil
}
