package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	Profile  ProfileConfig
	Extract  ExtractConfig
	Queue    QueueConfig
	Server   ServerConfig
	LogLevel slog.Level
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

type StorageConfig struct {
	Root string
}

// IngestConfig controls the inbox watcher.
type IngestConfig struct {
	InboxDir      string
	WatchInterval time.Duration
	Notify        bool // wake the polling loop on fsnotify events
}

// ProfileConfig names the canonical profile rebuilt after each ingestion cycle.
type ProfileConfig struct {
	FullName string
	Title    string
}

type ExtractConfig struct {
	MaxBytes    int64
	LexiconFile string // optional YAML override of the embedded keyword tables
}

type QueueConfig struct {
	Backend       string // "memory" | "redis"
	Workers       int
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Key           string
}

type ServerConfig struct {
	HealthAddr string
}

// LoadConfig loads .env (when present) and then reads the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:              getEnv("DB_URL", "file:career.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Storage: StorageConfig{
			Root: getEnv("STORAGE_DIR", "./data/files"),
		},
		Ingest: IngestConfig{
			InboxDir:      getEnv("INBOX_DIR", "./inbox"),
			WatchInterval: getEnvAsDuration("WATCH_INTERVAL", 10*time.Second),
			Notify:        getEnvAsBool("WATCH_NOTIFY", false),
		},
		Profile: ProfileConfig{
			FullName: getEnv("PROFILE_NAME", "Default Profile"),
			Title:    getEnv("PROFILE_TITLE", ""),
		},
		Extract: ExtractConfig{
			MaxBytes:    int64(getEnvAsInt("TEXT_MAX_BYTES", 20<<20)),
			LexiconFile: getEnv("LEXICON_FILE", ""),
		},
		Queue: QueueConfig{
			Backend:       strings.ToLower(getEnv("QUEUE_BACKEND", "memory")),
			Workers:       getEnvAsInt("QUEUE_WORKERS", 2),
			Size:          getEnvAsInt("QUEUE_SIZE", 256),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			Key:           getEnv("QUEUE_KEY", "career:documents"),
		},
		Server: ServerConfig{
			HealthAddr: getEnv("HEALTH_ADDR", ":8081"),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// Validate checks the settings every binary depends on.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_DRIVER", c.Database.Driver, OneOf("sqlite", "postgres")).
		Field("DB_URL", c.Database.DSN, Required).
		Field("STORAGE_DIR", c.Storage.Root, Required).
		Field("PROFILE_NAME", c.Profile.FullName, Required, MaxLength(200)).
		Field("QUEUE_BACKEND", c.Queue.Backend, OneOf("memory", "redis"))
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	if c.Ingest.WatchInterval <= 0 {
		return NewAppError("CONFIG_ERROR", "WATCH_INTERVAL must be positive", ErrInvalidInput)
	}
	return nil
}
