package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	Session SessionConfig
	Order   OrderConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME" default:"checkout"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"json"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type SessionConfig struct {
	Store        string        `envconfig:"SESSION_STORE" default:"memory"`
	StorageKey   string        `envconfig:"SESSION_STORAGE_KEY" default:"checkout"`
	Currency     string        `envconfig:"SESSION_CURRENCY" default:"JPY"`
	CookieName   string        `envconfig:"SESSION_COOKIE_NAME" default:"checkout_sid"`
	CookieMaxAge time.Duration `envconfig:"SESSION_COOKIE_MAX_AGE" default:"720h"`
	CookieSecure bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

type OrderConfig struct {
	BaseURL string        `envconfig:"ORDER_SERVICE_URL" default:"http://localhost:8081"`
	Timeout time.Duration `envconfig:"ORDER_SERVICE_TIMEOUT" default:"10s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.MaxConns,
	)
}

func (c Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DB.User == "" || c.DB.Password == "" {
			return fmt.Errorf("DB_USER and DB_PASSWORD are required for session store %q", c.Session.Store)
		}
	default:
		return fmt.Errorf("session store %q is not supported", c.Session.Store)
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8889"},
		Log: LogConfig{
			Level:      "error",
			Format:     "text",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Session: SessionConfig{
			Store:        StoreMemory,
			StorageKey:   "checkout",
			Currency:     "JPY",
			CookieName:   "checkout_sid",
			CookieMaxAge: time.Hour,
		},
		Order: OrderConfig{
			BaseURL: "http://localhost:8081",
			Timeout: time.Second,
		},
	}
}
