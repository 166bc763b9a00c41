package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`
	GinMode       string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AppOrigin     string `env:"APP_ORIGIN" envDefault:"http://localhost:3000"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Mail     MailConfig     `envPrefix:"MAIL_"`
}

type DatabaseConfig struct {
	Driver   string `env:"DRIVER" envDefault:"postgres"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"nexus"`
	Password string `env:"PASSWORD" envDefault:"nexuspassword"`
	Name     string `env:"NAME" envDefault:"team_nexus"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

// RedisConfig configures the session store. An empty Host selects signed cookie sessions.
type RedisConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	PoolSize int    `env:"POOL_SIZE" envDefault:"10"`
}

// MailConfig configures outbound invitation email. An empty SMTPHost disables delivery.
type MailConfig struct {
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	From           string `env:"FROM" envDefault:"Team Nexus <no-reply@teamnexus.app>"`
	SkipTLSVerify  bool   `env:"SKIP_TLS_VERIFY" envDefault:"false"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"10"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

func (m MailConfig) Enabled() bool {
	return m.SMTPHost != ""
}
