package config

import (
	"os"
	"testing"
)

func TestLoadServerConfig_DefaultEnvironment(t *testing.T) {
	os.Unsetenv("ENV")
	cfg := LoadServerConfig()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected %q, got %q", EnvDevelopment, cfg.Environment)
	}
}

func TestLoadServerConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("ENV", "invalid")
	cfg := LoadServerConfig()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected %q for invalid ENV, got %q", EnvDevelopment, cfg.Environment)
	}
}

func TestLoadServerConfig_ValidEnvironments(t *testing.T) {
	tests := []struct {
		env  string
		want Environment
	}{
		{"development", EnvDevelopment},
		{"staging", EnvStaging},
		{"production", EnvProduction},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			cfg := LoadServerConfig()
			if cfg.Environment != tt.want {
				t.Errorf("expected %q, got %q", tt.want, cfg.Environment)
			}
		})
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "PORT", "STORE_BACKEND", "LICENSE_FILE", "CORS_ORIGINS", "RATE_LIMIT_REQUESTS", "SNAPSHOT_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := LoadServerConfig()
	if cfg.ListenAddr != ":3000" {
		t.Errorf("expected listen addr :3000, got %q", cfg.ListenAddr)
	}
	if cfg.StoreBackend != BackendFile {
		t.Errorf("expected file backend, got %q", cfg.StoreBackend)
	}
	if cfg.LicenseFile != "licenze.json" {
		t.Errorf("expected licenze.json, got %q", cfg.LicenseFile)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("expected no origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitRequests != 600 {
		t.Errorf("expected 600 requests, got %d", cfg.RateLimitRequests)
	}
	if cfg.Snapshot.Enabled() {
		t.Error("expected snapshots disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadServerConfig_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_REQUESTS", "-5")
	t.Setenv("SNAPSHOT_ON_START", "yes")

	cfg := LoadServerConfig()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.ListenAddr)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("expected sqlite, got %q", cfg.StoreBackend)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitRequests != 600 {
		t.Errorf("expected negative limit to fall back to 600, got %d", cfg.RateLimitRequests)
	}
	if !cfg.Snapshot.OnStart {
		t.Error("expected snapshot on start")
	}
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr bool
	}{
		{"file", ServerConfig{StoreBackend: BackendFile, LicenseFile: "l.json", RateLimitPeriod: "1m"}, false},
		{"file without path", ServerConfig{StoreBackend: BackendFile, RateLimitPeriod: "1m"}, true},
		{"memory", ServerConfig{StoreBackend: BackendMemory, RateLimitPeriod: "1m"}, false},
		{"postgres without url", ServerConfig{StoreBackend: BackendPostgres, RateLimitPeriod: "1m"}, true},
		{"redis without url", ServerConfig{StoreBackend: BackendRedis, RateLimitPeriod: "1m"}, true},
		{"redis", ServerConfig{StoreBackend: BackendRedis, RedisURL: "redis://localhost:6379", RateLimitPeriod: "1m"}, false},
		{"unknown backend", ServerConfig{StoreBackend: "tape", RateLimitPeriod: "1m"}, true},
		{"bad period", ServerConfig{StoreBackend: BackendMemory, RateLimitPeriod: "often"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
