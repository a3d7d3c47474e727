package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fraudwatch/internal/flagx"
	"github.com/dmitrijs2005/fraudwatch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent or zero
// fields leave the corresponding Config value untouched.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogLevel       string         `json:"log_level"`
	Storage        struct {
		Driver        string `json:"driver"`
		SQLitePath    string `json:"sqlite_path"`
		RedisAddr     string `json:"redis_addr"`
		RedisPassword string `json:"redis_password"`
		RedisDB       int    `json:"redis_db"`
		RedisPrefix   string `json:"redis_prefix"`
	} `json:"storage"`
	Scoring struct {
		MerchantCategoryCode *int `json:"merchant_category_code"`
		ResponseCode         *int `json:"response_code"`
	} `json:"scoring"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag it does nothing. Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}

	s := jc.Storage
	if s.Driver != "" {
		cfg.Storage.Driver = s.Driver
	}
	if s.SQLitePath != "" {
		cfg.Storage.SQLitePath = s.SQLitePath
	}
	if s.RedisAddr != "" {
		cfg.Storage.RedisAddr = s.RedisAddr
	}
	if s.RedisPassword != "" {
		cfg.Storage.RedisPassword = s.RedisPassword
	}
	if s.RedisDB != 0 {
		cfg.Storage.RedisDB = s.RedisDB
	}
	if s.RedisPrefix != "" {
		cfg.Storage.RedisPrefix = s.RedisPrefix
	}

	if jc.Scoring.MerchantCategoryCode != nil {
		cfg.Scoring.MerchantCategoryCode = *jc.Scoring.MerchantCategoryCode
	}
	if jc.Scoring.ResponseCode != nil {
		cfg.Scoring.ResponseCode = *jc.Scoring.ResponseCode
	}
}
