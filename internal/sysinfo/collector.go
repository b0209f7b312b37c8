// Package sysinfo samples host resource usage for the system health endpoint.
package sysinfo

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Metrics is one sample of host and process state.
type Metrics struct {
	CPUUsage       float64 `json:"cpu_usage"`
	MemoryUsage    float64 `json:"memory_usage"`
	DiskPath       string  `json:"disk_path"`
	DiskUsage      float64 `json:"disk_usage"`
	DiskFreeBytes  int64   `json:"disk_free_bytes"`
	DiskTotalBytes int64   `json:"disk_total_bytes"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Goroutines     int     `json:"goroutines"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
	Hostname       string  `json:"hostname"`
}

// Collector samples system metrics. Disk usage is reported for the
// filesystem holding dataPath.
type Collector struct {
	startTime time.Time
	dataPath  string
}

// NewCollector creates a Collector. An empty dataPath samples the working directory.
func NewCollector(dataPath string) *Collector {
	return &Collector{
		startTime: time.Now(),
		dataPath:  dataPath,
	}
}

// Collect gathers a sample. Individual probes that fail leave their fields zero.
func (c *Collector) Collect(ctx context.Context) (*Metrics, error) {
	hostname, _ := os.Hostname()
	m := &Metrics{
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Hostname:      hostname,
	}

	// Interval 0 compares against the previous call instead of blocking.
	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuPercent) > 0 {
		m.CPUUsage = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		m.MemoryUsage = memStat.UsedPercent
	}

	m.DiskPath = c.diskPath()
	diskStat, err := disk.UsageWithContext(ctx, m.DiskPath)
	if err == nil {
		m.DiskUsage = diskStat.UsedPercent
		m.DiskFreeBytes = int64(diskStat.Free)
		m.DiskTotalBytes = int64(diskStat.Total)
	}

	return m, nil
}

// diskPath resolves the directory to stat, walking up to an existing one.
func (c *Collector) diskPath() string {
	path := c.dataPath
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	for {
		if info, err := os.Stat(abs); err == nil {
			if info.IsDir() {
				return abs
			}
			return filepath.Dir(abs)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs
		}
		abs = parent
	}
}
