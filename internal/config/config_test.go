package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "RECEIPTS_DIR", "MONTH_CACHE_TTL", "REQUESTS_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.SQLiteDBPath != "./data/deudas.db" {
		t.Errorf("SQLiteDBPath = %q, want ./data/deudas.db", cfg.SQLiteDBPath)
	}
	if cfg.ReceiptsDir != "./data/comprobantes" {
		t.Errorf("ReceiptsDir = %q, want ./data/comprobantes", cfg.ReceiptsDir)
	}
	if cfg.MonthCacheTTL != 30*time.Second {
		t.Errorf("MonthCacheTTL = %v, want 30s", cfg.MonthCacheTTL)
	}
	if cfg.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want 60", cfg.RequestsPerMinute)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("MONTH_CACHE_TTL", "2m")
	t.Setenv("REQUESTS_PER_MINUTE", "10")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}
	if cfg.MonthCacheTTL != 2*time.Minute {
		t.Errorf("MonthCacheTTL = %v, want 2m", cfg.MonthCacheTTL)
	}
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want 10", cfg.RequestsPerMinute)
	}
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("MONTH_CACHE_TTL", "soon")
	t.Setenv("REQUESTS_PER_MINUTE", "many")

	cfg := Load()
	if cfg.MonthCacheTTL != 30*time.Second {
		t.Errorf("MonthCacheTTL = %v, want fallback 30s", cfg.MonthCacheTTL)
	}
	if cfg.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want fallback 60", cfg.RequestsPerMinute)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		return &Config{
			Port:              "8081",
			DataBackend:       "memory",
			ReceiptsDir:       t.TempDir(),
			MonthCacheTTL:     time.Minute,
			RequestsPerMinute: 60,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid memory backend",
			mutate: func(c *Config) {},
		},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Port = "http" },
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "invalid port",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.DataBackend = "redis" },
			wantErr: "invalid data backend",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr: "database path cannot be empty",
		},
		{
			name:    "empty receipts dir",
			mutate:  func(c *Config) { c.ReceiptsDir = "" },
			wantErr: "receipts directory",
		},
		{
			name:    "non-positive cache TTL",
			mutate:  func(c *Config) { c.MonthCacheTTL = 0 },
			wantErr: "month cache TTL",
		},
		{
			name:    "non-positive rate limit",
			mutate:  func(c *Config) { c.RequestsPerMinute = 0 },
			wantErr: "requests per minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCreatesSQLiteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := &Config{
		Port:              "8081",
		DataBackend:       "sqlite",
		SQLiteDBPath:      filepath.Join(dir, "deudas.db"),
		ReceiptsDir:       t.TempDir(),
		MonthCacheTTL:     time.Minute,
		RequestsPerMinute: 60,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
