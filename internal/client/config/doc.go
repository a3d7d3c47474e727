// Package config loads runtime configuration for the fraudwatch client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables FRAUDWATCH_*, optionally seeded from a .env file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the fraud-detection API
//	-t int      request timeout (seconds)
//	-s string   session storage driver: memory, sqlite, redis
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "storage": {"driver": "sqlite", "sqlite_path": "session.db"},
//	  "scoring": {"merchant_category_code": 5411, "response_code": 0}
//	}
package config
