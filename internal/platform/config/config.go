package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends for the listing repository.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// RedisConfig configures the go-redis client. An empty URL means Redis is not used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event producer. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// Config is the full process configuration.
type Config struct {
	Server        Server
	Store         string
	DatabaseURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	PartySeedFile string
	LogLevel      string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Unset variables fall back to defaults suitable for local runs.
func FromEnv() (Config, error) {
	var errs []string
	duration := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:            getEnv("SUPPLY_ADDR", ":8080"),
			JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
			JWTIssuer:       os.Getenv("JWT_ISSUER"),
			JWTAudience:     os.Getenv("JWT_AUDIENCE"),
			ShutdownTimeout: duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  duration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Store:       strings.ToLower(getEnv("SUPPLY_STORE", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "supply.audit"),
		},
		PartySeedFile: os.Getenv("PARTY_SEED_FILE"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("SUPPLY_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("SUPPLY_STORE=redis requires REDIS_URL")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("SUPPLY_STORE=redis requires DATABASE_URL for the party directory")
		}
	default:
		return fmt.Errorf("unknown SUPPLY_STORE %q", c.Store)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
