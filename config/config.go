package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"crm/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"1414"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mysql"`
	MySQL       MySQLConfig
	Mongo       MongoConfig

	Timezone string `env:"TIMEZONE" envDefault:"UTC"`

	CORSOrigins       []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	MetricsAllowedIPs []string `env:"METRICS_ALLOWED_IPS" envSeparator:","`

	JWTSecret  string `env:"JWT_SECRET"`
	APIKeyHash string `env:"API_KEY_HASH"`

	StatsInterval   time.Duration `env:"STATS_INTERVAL" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Log logger.Config
}

type MySQLConfig struct {
	Host     string `env:"MYSQL_HOST" envDefault:"127.0.0.1"`
	Port     int    `env:"MYSQL_PORT" envDefault:"3306"`
	User     string `env:"MYSQL_USER" envDefault:"root"`
	Password string `env:"MYSQL_PASSWORD"`
	Database string `env:"MYSQL_DATABASE" envDefault:"crm"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"crm"`
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(c.StoreDriver)
	switch c.StoreDriver {
	case DriverMySQL, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be mysql, mongo or memory, got %q", c.StoreDriver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("STATS_INTERVAL must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AuthEnabled reports whether write routes require credentials.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" || c.APIKeyHash != ""
}

func (c *Config) Address() string {
	return ":" + c.Port
}
