package configs

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMongoURI       = "mongodb://127.0.0.1:27017"
	DefaultDBName         = "plp_bookstore"
	DefaultCollection     = "books"
	DefaultPage           = 1
	DefaultPageSize       = 5
	DefaultConnectTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
)

type Config struct {
	MongoURI         string
	DBName           string
	Collection       string
	AuditCollection  string
	Page             int
	PageSize         int
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	LogLevel         string
}

// LoadConfig reads .env if present and then the environment. Unset values
// fall back to the local defaults.
func LoadConfig() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Malformed numbers and durations are
// errors rather than silent defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		MongoURI:        valueOr(getenv("MONGO_URI"), DefaultMongoURI),
		DBName:          valueOr(getenv("DB_NAME"), DefaultDBName),
		Collection:      valueOr(getenv("COLLECTION"), DefaultCollection),
		AuditCollection: getenv("AUDIT_COLLECTION"),
		Page:            DefaultPage,
		PageSize:        DefaultPageSize,
		ConnectTimeout:  DefaultConnectTimeout,
		LogLevel:        valueOr(getenv("LOG_LEVEL"), DefaultLogLevel),
	}

	if val := getenv("PAGE"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &cfg.Page); err != nil {
			return Config{}, fmt.Errorf("invalid PAGE %q: %w", val, err)
		}
	}
	if val := getenv("PAGE_SIZE"); val != "" {
		if _, err := fmt.Sscanf(val, "%d", &cfg.PageSize); err != nil {
			return Config{}, fmt.Errorf("invalid PAGE_SIZE %q: %w", val, err)
		}
	}
	if val := getenv("CONNECT_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CONNECT_TIMEOUT: %w", err)
		}
		cfg.ConnectTimeout = d
	}
	if val := getenv("OP_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OP_TIMEOUT: %w", err)
		}
		cfg.OperationTimeout = d
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.MongoURI == "":
		return fmt.Errorf("mongo uri is empty")
	case c.DBName == "":
		return fmt.Errorf("database name is empty")
	case c.Collection == "":
		return fmt.Errorf("collection name is empty")
	case c.Page < 1:
		return fmt.Errorf("page must be at least 1, got %d", c.Page)
	case c.PageSize < 1:
		return fmt.Errorf("page size must be at least 1, got %d", c.PageSize)
	case c.ConnectTimeout < 0 || c.OperationTimeout < 0:
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func valueOr(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
