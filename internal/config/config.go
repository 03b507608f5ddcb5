package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"nabungemas/internal/log"
)

type Config struct {
	// HTTP Server
	Port               string
	BindAddress        string
	RateLimitPerMinute int

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DataDir      string // seed files for the dropdown catalog

	// Logging
	LogLevel  string
	LogFormat string

	// UI
	ConfirmTTL time.Duration
	AppVersion string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		BindAddress:        getEnv("BIND_ADDRESS", "127.0.0.1"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/nabungemas.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ConfirmTTL: getEnvDuration("CONFIRM_TTL", 10*time.Minute),
		AppVersion: getEnv("APP_VERSION", "dev"),
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddress, c.Port)
}

var validBackends = []string{"memory", "sqlite"}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.BindAddress == "" {
		errors = append(errors, "bind address cannot be empty")
	} else if c.BindAddress != "localhost" && net.ParseIP(c.BindAddress) == nil {
		errors = append(errors, fmt.Sprintf("invalid bind address '%s': must be an IP address or localhost", c.BindAddress))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be between 1 and 10000 per minute", c.RateLimitPerMinute))
	}

	if c.ConfirmTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid confirm TTL %v: must be at least 1 second", c.ConfirmTTL))
	} else if c.ConfirmTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid confirm TTL %v: must be at most 24 hours", c.ConfirmTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
