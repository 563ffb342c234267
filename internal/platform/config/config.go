package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	pstrings "termcolor/pkg/platform/strings"
)

// Store drivers understood by StoreConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

// Server captures process level configuration.
type Server struct {
	Addr       string      `yaml:"addr"`
	Taxonomy   string      `yaml:"taxonomy"`
	AdminToken string      `yaml:"admin_token"`
	Store      StoreConfig `yaml:"store"`
	Redis      RedisConfig `yaml:"redis"`
	CSRF       CSRFConfig  `yaml:"csrf"`
	Kafka      KafkaConfig `yaml:"kafka"`
	Log        LogConfig   `yaml:"log"`
}

// StoreConfig selects the term metadata backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// RedisConfig mirrors the go-redis options we override.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CSRFConfig configures form token signing.
type CSRFConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// KafkaConfig enables the audit stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns a configuration that runs locally with an in-memory store.
func Defaults() Server {
	return Server{
		Addr:     ":8080",
		Taxonomy: "category",
		Store: StoreConfig{
			Driver:     DriverMemory,
			SQLitePath: "termcolor.db",
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		CSRF: CSRFConfig{
			// 24h matches the lifetime of a host nonce.
			TTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Topic: "termcolor.audit",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load layers defaults, the optional YAML file named by TERMCOLOR_CONFIG and
// environment variables, in that order.
func Load() (Server, error) {
	cfg := Defaults()
	if path := os.Getenv("TERMCOLOR_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Server{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Server) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Server) error {
	setString(&cfg.Addr, "TERMCOLOR_ADDR")
	setString(&cfg.Taxonomy, "TERMCOLOR_TAXONOMY")
	setString(&cfg.AdminToken, "ADMIN_API_TOKEN")
	setString(&cfg.Store.Driver, "TERMCOLOR_STORE")
	setString(&cfg.Store.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Store.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.CSRF.Secret, "CSRF_SECRET")
	setString(&cfg.Kafka.Topic, "KAFKA_AUDIT_TOPIC")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = pstrings.SplitList(v)
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_POOL_SIZE: %w", err)
		}
		cfg.Redis.PoolSize = n
	}
	if v := os.Getenv("CSRF_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CSRF_TTL: %w", err)
		}
		cfg.CSRF.TTL = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects configurations that cannot start.
func (s Server) Validate() error {
	if s.Taxonomy == "" {
		return fmt.Errorf("taxonomy is required")
	}
	switch s.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if s.Store.DatabaseURL == "" {
			return fmt.Errorf("store driver %q requires DATABASE_URL", s.Store.Driver)
		}
	case DriverRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("store driver %q requires REDIS_URL", s.Store.Driver)
		}
	case DriverSQLite:
		if s.Store.SQLitePath == "" {
			return fmt.Errorf("store driver %q requires SQLITE_PATH", s.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", s.Store.Driver)
	}
	if s.Store.Driver != DriverMemory && s.CSRF.Secret == "" {
		return fmt.Errorf("store driver %q requires CSRF_SECRET", s.Store.Driver)
	}
	if s.CSRF.TTL <= 0 {
		return fmt.Errorf("csrf ttl must be positive")
	}
	return nil
}

// CSRFSecret returns the configured signing secret, or a development default.
// Validate only allows the default with the memory driver.
func (s Server) CSRFSecret() string {
	if s.CSRF.Secret == "" {
		// Use a default for development - should be overridden in production
		return "dev-csrf-secret-change-in-production"
	}
	return s.CSRF.Secret
}
