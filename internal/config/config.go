package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	HttpPort          int
	GrpcPort          int
	StoreDriver       string
	RedisAddr         string
	RedisKeyPrefix    string
	DatabaseDSN       string
	CatalogPath       string
	WatchCatalog      bool
	MaxUniqueAttempts int
	SequenceBlockSize int64
	MaxSequence       int64
	LogLevel          slog.Level
}

func Default() Config {
	return Config{
		HttpPort:          3000,
		GrpcPort:          3001,
		StoreDriver:       StoreMemory,
		RedisAddr:         "localhost:6379",
		RedisKeyPrefix:    "customid:",
		DatabaseDSN:       "custom-ids.db",
		WatchCatalog:      true,
		MaxUniqueAttempts: 5,
		SequenceBlockSize: 1,
		LogLevel:          slog.LevelInfo,
	}
}

// Load reads the .env files (missing files are not an error) and then the
// process environment on top of the defaults.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if cfg.HttpPort, err = intVar(getenv, "HTTP_PORT", cfg.HttpPort); err != nil {
		return Config{}, err
	}
	if cfg.GrpcPort, err = intVar(getenv, "GRPC_PORT", cfg.GrpcPort); err != nil {
		return Config{}, err
	}
	if cfg.MaxUniqueAttempts, err = intVar(getenv, "MAX_UNIQUE_ATTEMPTS", cfg.MaxUniqueAttempts); err != nil {
		return Config{}, err
	}

	blockSize, err := intVar(getenv, "SEQUENCE_BLOCK_SIZE", int(cfg.SequenceBlockSize))
	if err != nil {
		return Config{}, err
	}
	cfg.SequenceBlockSize = int64(blockSize)

	maxSequence, err := intVar(getenv, "MAX_SEQUENCE", int(cfg.MaxSequence))
	if err != nil {
		return Config{}, err
	}
	cfg.MaxSequence = int64(maxSequence)

	if v := getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = strings.ToLower(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := getenv("REDIS_KEY_PREFIX"); v != "" {
		cfg.RedisKeyPrefix = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	cfg.CatalogPath = getenv("CATALOG_PATH")

	if v := getenv("WATCH_CATALOG"); v != "" {
		if cfg.WatchCatalog, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("failed to convert to bool WATCH_CATALOG: %q", v)
		}
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", v)
		}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreRedis, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, redis, sqlite, postgres, got %q", c.StoreDriver)
	}

	if c.StoreDriver == StorePostgres && !strings.Contains(c.DatabaseDSN, "://") && !strings.Contains(c.DatabaseDSN, "=") {
		return fmt.Errorf("DATABASE_DSN %q is not a postgres connection string", c.DatabaseDSN)
	}
	if c.CatalogPath == "" {
		return fmt.Errorf("'CATALOG_PATH' variable is undefined")
	}
	if c.MaxUniqueAttempts < 1 {
		return fmt.Errorf("MAX_UNIQUE_ATTEMPTS must be positive, got %d", c.MaxUniqueAttempts)
	}
	if c.SequenceBlockSize < 1 {
		return fmt.Errorf("SEQUENCE_BLOCK_SIZE must be positive, got %d", c.SequenceBlockSize)
	}
	if c.MaxSequence < 0 {
		return fmt.Errorf("MAX_SEQUENCE must not be negative, got %d", c.MaxSequence)
	}
	if c.HttpPort <= 0 || c.GrpcPort <= 0 || c.HttpPort == c.GrpcPort {
		return fmt.Errorf("HTTP_PORT and GRPC_PORT must be distinct positive ports")
	}

	return nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to convert to int %s: %q", key, v)
	}

	return n, nil
}
