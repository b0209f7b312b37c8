package sysinfo

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCollector_Collect(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector(filepath.Join(dir, "licenze.json"))

	m, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if m.GoVersion != runtime.Version() {
		t.Errorf("expected go version %s, got %s", runtime.Version(), m.GoVersion)
	}
	if m.Goroutines <= 0 {
		t.Errorf("expected positive goroutine count, got %d", m.Goroutines)
	}
	if m.DiskPath != dir {
		t.Errorf("expected disk path %s, got %s", dir, m.DiskPath)
	}
	if m.DiskTotalBytes <= 0 {
		t.Errorf("expected disk total, got %d", m.DiskTotalBytes)
	}
}

func TestCollector_DiskPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "licenze.json")
	if err := os.WriteFile(file, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"existing file uses its directory", file, dir},
		{"existing directory", dir, dir},
		{"missing nested path walks up", filepath.Join(dir, "a", "b", "c.json"), dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCollector(tt.path).diskPath(); got != tt.want {
				t.Errorf("diskPath() = %s, want %s", got, tt.want)
			}
		})
	}
}
