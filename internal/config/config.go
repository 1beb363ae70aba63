// Package config loads storefront settings from defaults, an optional YAML
// file, an optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STOREFRONT_"

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Mock    MockConfig    `yaml:"mock"`
}

type APIConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

type StorageConfig struct {
	Backend       string `yaml:"backend"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type CatalogConfig struct {
	Cache        string        `yaml:"cache"`
	TTL          time.Duration `yaml:"ttl"`
	ProductLimit int           `yaml:"product_limit"`
}

type SessionConfig struct {
	PhonePrefix  string        `yaml:"phone_prefix"`
	LogoutWindow time.Duration `yaml:"logout_window"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MockConfig configures the in-process fake backend served by `storefront mock-api`.
type MockConfig struct {
	Addr   string `yaml:"addr"`
	Secret string `yaml:"secret"`
	OTP    string `yaml:"otp"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:         "https://api.easykirana.in/api",
			Timeout:         10 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: defaultSQLitePath(),
			RedisAddr:  "localhost:6379",
		},
		Catalog: CatalogConfig{
			Cache:        "none",
			TTL:          5 * time.Minute,
			ProductLimit: 6,
		},
		Session: SessionConfig{
			PhonePrefix:  "+91",
			LogoutWindow: time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Mock: MockConfig{
			Addr:   ":8089",
			Secret: "storefront-mock-secret",
			OTP:    "123456",
		},
	}
}

// Load builds the configuration. yamlPath may be empty. A missing .env file is
// not an error.
func Load(yamlPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout = getDuration("API_TIMEOUT", cfg.API.Timeout)
	cfg.API.BreakerFailures = getUint32("BREAKER_FAILURES", cfg.API.BreakerFailures)
	cfg.API.BreakerCooldown = getDuration("BREAKER_COOLDOWN", cfg.API.BreakerCooldown)

	cfg.Storage.Backend = getEnv("STORAGE", cfg.Storage.Backend)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.RedisAddr = getEnv("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = getInt("REDIS_DB", cfg.Storage.RedisDB)

	cfg.Catalog.Cache = getEnv("CATALOG_CACHE", cfg.Catalog.Cache)
	cfg.Catalog.TTL = getDuration("CATALOG_TTL", cfg.Catalog.TTL)
	cfg.Catalog.ProductLimit = getInt("PRODUCT_LIMIT", cfg.Catalog.ProductLimit)

	cfg.Session.PhonePrefix = getEnv("PHONE_PREFIX", cfg.Session.PhonePrefix)
	cfg.Session.LogoutWindow = getDuration("LOGOUT_WINDOW", cfg.Session.LogoutWindow)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Mock.Addr = getEnv("MOCK_ADDR", cfg.Mock.Addr)
	cfg.Mock.Secret = getEnv("MOCK_SECRET", cfg.Mock.Secret)
	cfg.Mock.OTP = getEnv("MOCK_OTP", cfg.Mock.OTP)

	return cfg, nil
}

func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.BreakerFailures == 0 {
		return errors.New("breaker failures must be at least 1")
	}
	if c.API.BreakerCooldown <= 0 {
		return fmt.Errorf("breaker cooldown must be positive, got %s", c.API.BreakerCooldown)
	}
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path is required")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return errors.New("redis address is required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Catalog.Cache {
	case "none", "redis":
	default:
		return fmt.Errorf("unknown catalog cache %q", c.Catalog.Cache)
	}
	if c.Catalog.TTL <= 0 {
		return fmt.Errorf("catalog ttl must be positive, got %s", c.Catalog.TTL)
	}
	if c.Session.LogoutWindow < 0 {
		return fmt.Errorf("logout window must not be negative, got %s", c.Session.LogoutWindow)
	}
	return nil
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(home, ".storefront", "state.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(n)
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
