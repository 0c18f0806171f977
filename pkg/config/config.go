// Package config loads runtime configuration from environment variables
// and optional YAML threshold profiles.
package config

import "os"

// Config holds service configuration.
type Config struct {
	Port        string
	LogLevel    string
	DBPath      string
	RedisAddr   string
	ProfilePath string
}

// Load reads configuration from environment variables with safe defaults.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "finsight.db"
	}

	// Empty means the result cache is disabled.
	redisAddr := os.Getenv("REDIS_ADDR")

	return &Config{
		Port:        port,
		LogLevel:    logLevel,
		DBPath:      dbPath,
		RedisAddr:   redisAddr,
		ProfilePath: os.Getenv("THRESHOLD_PROFILE"),
	}
}
