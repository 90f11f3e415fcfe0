// internal/config/config.go
//
// Typed application configuration.
// Values come from the environment (a .env file is loaded by main beforehand),
// optionally layered over a YAML file named by CONFIG_PATH. Priority: ENV > YAML > defaults.
//
// The word list overrides (WORDS_5_FILE, WORDS_6_FILE, WORDS_7_FILE) are read by
// the words package itself.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultJWTSecret is only accepted in the dev environment.
const DefaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Env    string         `yaml:"env" env:"APP_ENV" env-default:"dev"`
	Server ServerConfig   `yaml:"server"`
	Log    LogConfig      `yaml:"log"`
	DB     DatabaseConfig `yaml:"database"`
	Redis  RedisConfig    `yaml:"redis"`
	Auth   AuthConfig     `yaml:"auth"`
	Daily  DailyConfig    `yaml:"daily"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"             env-default:"5175"`
	ClientOrigin    string        `yaml:"client_origin"    env:"CLIENT_ORIGIN"    env-default:"http://localhost:5173"`
	Timeout         time.Duration `yaml:"timeout"          env:"HTTP_TIMEOUT"     env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"    env-default:"sqlite3"`
	URL    string `yaml:"url"    env:"DATABASE_URL" env-default:"./data/kelime.db"`
}

// RedisConfig: an empty Addr runs without redis (memory sessions, local score feed).
// SessionTTL applies to either session store.
type RedisConfig struct {
	Addr       string        `yaml:"addr"        env:"REDIS_ADDR"`
	DB         int           `yaml:"db"          env:"REDIS_DB"    env-default:"0"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"  env:"JWT_SECRET"  env-default:"dev-secret-change-me"`
	JWTTTL     time.Duration `yaml:"jwt_ttl"     env:"JWT_TTL"     env-default:"336h"`
	CookieName string        `yaml:"cookie_name" env:"COOKIE_NAME" env-default:"kelime_token"`
}

type DailyConfig struct {
	Timezone  string `yaml:"timezone"   env:"DAILY_TIMEZONE"   env-default:"Europe/Istanbul"`
	ResetHour int    `yaml:"reset_hour" env:"DAILY_RESET_HOUR" env-default:"10"`
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values cleanenv cannot.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or pgx (got %q)", c.DB.Driver)
	}
	if c.DB.URL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.Daily.ResetHour < 0 || c.Daily.ResetHour > 23 {
		return fmt.Errorf("DAILY_RESET_HOUR must be 0-23 (got %d)", c.Daily.ResetHour)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Log.Format)
	}
	if c.Auth.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if !c.IsDev() {
		if c.Auth.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be set outside dev")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
		}
	}
	return nil
}

func (c *Config) IsDev() bool { return c.Env == "dev" || c.Env == "development" }

// Origins splits CLIENT_ORIGIN on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.Server.ClientOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
