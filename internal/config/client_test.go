package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr bool
	}{
		{"empty config", ClientConfig{}, true},
		{"bad scheme", ClientConfig{ServerURL: "ftp://example.com"}, true},
		{"valid config", ClientConfig{ServerURL: "http://localhost:3000"}, false},
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

func TestClientConfig_ServerURLOrDefault(t *testing.T) {
	if got := (&ClientConfig{}).ServerURLOrDefault(); got != DefaultServerURL {
		t.Errorf("expected %q, got %q", DefaultServerURL, got)
	}
	if got := (&ClientConfig{ServerURL: "https://lic.example"}).ServerURLOrDefault(); got != "https://lic.example" {
		t.Errorf("expected configured URL, got %q", got)
	}
}

func TestLoadClientConfig_NonExistent(t *testing.T) {
	cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerURL != "" || cfg.Username != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestClientConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	original := &ClientConfig{
		ServerURL: "http://localhost:3000",
		Username:  "petar",
		Version:   "1.6",
	}
	if err := original.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	loaded, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("LoadClientConfig() error: %v", err)
	}
	if *loaded != *original {
		t.Errorf("expected %+v, got %+v", original, loaded)
	}
}

func TestLoadClientConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("server_url: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadClientConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
