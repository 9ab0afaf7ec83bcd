package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"

	minSecretLen = 32
)

type Config struct {
	Port       string `env:"PORT,        default=8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	AppName    string `env:"APP_NAME,    default=Portal"`
	AppVersion string `env:"APP_VERSION, default=1.0.0"`

	Store   StoreConfig
	Session SessionConfig
	Admin   AdminConfig
	Mongo   MongoConfig

	// GeneratedSecret is set when an empty development secret was replaced
	// with a random one. Sessions do not survive a restart in that case.
	GeneratedSecret bool
}

type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER, default=sqlite"`
	DBPath     string `env:"DB_PATH,      default=data/app.db"`
	BcryptCost int    `env:"BCRYPT_COST,  default=10"`
}

type SessionConfig struct {
	TimeoutMinutes int    `env:"SESSION_TIMEOUT_MINUTES, default=60"`
	Secret         string `env:"SESSION_SECRET"`
	CookieName     string `env:"SESSION_COOKIE_NAME,     default=portal_session"`
}

type AdminConfig struct {
	Username string `env:"DEFAULT_ADMIN_USERNAME, default=admin"`
	Password string `env:"DEFAULT_ADMIN_PASSWORD, default=changeme123"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portal"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom resolves the configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}

	if cfg.Session.Secret == "" && !cfg.IsProduction() {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Session.Secret = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Session.TimeoutMinutes <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TIMEOUT_MINUTES must be positive, got %d", c.Session.TimeoutMinutes))
	}
	if c.Store.Driver != DriverSQLite && c.Store.Driver != DriverMongo {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMongo, c.Store.Driver))
	}
	if c.Store.BcryptCost < bcrypt.MinCost || c.Store.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Store.BcryptCost))
	}
	if c.IsProduction() && len(c.Session.Secret) < minSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes in production", minSecretLen))
	}
	if c.Admin.Username == "" {
		errs = append(errs, errors.New("DEFAULT_ADMIN_USERNAME must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

func randomSecret() (string, error) {
	b := make([]byte, minSecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
