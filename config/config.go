/*
Package config loads service configuration from the environment.

A .env file is loaded when present (development convenience); real
deployments set the variables directly.

VARIABLES:
  PORT             HTTP listen port (default 8080)
  DB_PATH          SQLite database path (default ./data/cca.db)
  REDIS_ADDR       Redis address for the report cache; empty selects
                   the in-process cache
  CACHE_TTL_HOURS  Report cache TTL in hours (default 24)
  LOG_LEVEL        debug, info, warn, error (read by the logging package)
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int
	DBPath    string
	RedisAddr string
	CacheTTL  time.Duration
}

// Load reads configuration from the environment, after loading .env
// when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:      getEnvInt("PORT", 8080),
		DBPath:    getEnvString("DB_PATH", "./data/cca.db"),
		RedisAddr: getEnvString("REDIS_ADDR", ""),
		CacheTTL:  time.Duration(getEnvInt("CACHE_TTL_HOURS", 24)) * time.Hour,
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
