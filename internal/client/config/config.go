package config

import (
	"os"
	"time"
)

// Storage drivers for the persisted session slots.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// StorageConfig selects where the session identity and token are persisted.
type StorageConfig struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// ScoringConfig holds the constant values injected into every transaction
// forwarded to the scoring service (see prediction.Defaults).
type ScoringConfig struct {
	MerchantCategoryCode int
	ResponseCode         int
}

// Config holds runtime settings for the fraudwatch client.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	Storage        StorageConfig
	Scoring        ScoringConfig
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 10 * time.Second
	c.Storage = StorageConfig{
		Driver:      StorageSQLite,
		SQLitePath:  "session.db",
		RedisPrefix: "fraudwatch:slot:",
	}
	// 5411 is the grocery-store MCC, 0 the "approved" response code.
	c.Scoring = ScoringConfig{MerchantCategoryCode: 5411, ResponseCode: 0}
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (optionally seeded from .env), a JSON file and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
