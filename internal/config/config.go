package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Persistence
	DataBackend  string
	SQLiteDBPath string

	// Receipt attachments
	ReceiptsDir string

	// Month view cache
	MonthCacheTTL time.Duration

	// Rate limiting
	RequestsPerMinute int
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8081"),
		DataBackend:       getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:      getEnv("SQLITE_DB_PATH", "./data/deudas.db"),
		ReceiptsDir:       getEnv("RECEIPTS_DIR", "./data/comprobantes"),
		MonthCacheTTL:     getEnvDuration("MONTH_CACHE_TTL", 30*time.Second),
		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 60),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
		// Nothing to check
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.DataBackend))
	}

	if c.ReceiptsDir == "" {
		errs = append(errs, "receipts directory cannot be empty")
	}

	if c.MonthCacheTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid month cache TTL %v: must be positive", c.MonthCacheTTL))
	}
	if c.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Sprintf("invalid requests per minute %d: must be positive", c.RequestsPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
