package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables understood by parseEnv.
const (
	EnvAPIURL         = "FRAUDWATCH_API_URL"
	EnvRequestTimeout = "FRAUDWATCH_REQUEST_TIMEOUT"
	EnvStorageDriver  = "FRAUDWATCH_STORAGE_DRIVER"
	EnvSQLitePath     = "FRAUDWATCH_SQLITE_PATH"
	EnvRedisAddr      = "FRAUDWATCH_REDIS_ADDR"
	EnvRedisPassword  = "FRAUDWATCH_REDIS_PASSWORD"
	EnvRedisDB        = "FRAUDWATCH_REDIS_DB"
	EnvLogLevel       = "FRAUDWATCH_LOG_LEVEL"
)

// parseEnv overlays cfg with FRAUDWATCH_* variables. Variables from the given
// dotenv files (".env" when none are given) are loaded first; a missing file
// is not an error and never overrides variables already set in the process.
//
// Panics on values that cannot be parsed, like the JSON and flag loaders.
func parseEnv(cfg *Config, dotenvFiles ...string) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			panic(fmt.Errorf("load %s: %w", f, err))
		}
	}

	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvRequestTimeout, err))
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv(EnvStorageDriver); ok && v != "" {
		cfg.Storage.Driver = v
	}
	if v, ok := os.LookupEnv(EnvSQLitePath); ok && v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok && v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v, ok := os.LookupEnv(EnvRedisPassword); ok {
		cfg.Storage.RedisPassword = v
	}
	if v, ok := os.LookupEnv(EnvRedisDB); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvRedisDB, err))
		}
		cfg.Storage.RedisDB = n
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}
