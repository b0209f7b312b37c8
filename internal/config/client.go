package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is the address of a locally running licenze server.
const DefaultServerURL = "http://localhost:3000"

// DefaultConfigDir returns the default config directory (~/.licenze).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".licenze"), nil
}

// DefaultConfigPath returns the default config file path (~/.licenze/config.yml).
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// ClientConfig holds licenzectl settings.
type ClientConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	// Username is used by heartbeat and check when no name is given.
	Username string `yaml:"username,omitempty"`
	// Version is reported with heartbeats.
	Version string `yaml:"version,omitempty"`

	Proxy ProxyConfig `yaml:"proxy,omitempty"`
}

// ProxyConfig routes licenzectl traffic through an HTTP or SOCKS5 proxy.
type ProxyConfig struct {
	HTTPProxy   string `yaml:"http_proxy,omitempty"`
	HTTPSProxy  string `yaml:"https_proxy,omitempty"`
	NoProxy     string `yaml:"no_proxy,omitempty"`
	SOCKS5Proxy string `yaml:"socks5_proxy,omitempty"`
}

// HasProxy reports whether any proxy is configured.
func (p ProxyConfig) HasProxy() bool {
	return p.HTTPProxy != "" || p.HTTPSProxy != "" || p.SOCKS5Proxy != ""
}

// Validate checks that the configuration is usable.
func (c *ClientConfig) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("server_url must use http or https scheme")
	}
	return nil
}

// ServerURLOrDefault returns the configured server URL or DefaultServerURL.
func (c *ClientConfig) ServerURLOrDefault() string {
	if c.ServerURL == "" {
		return DefaultServerURL
	}
	return c.ServerURL
}

// LoadClientConfig reads the configuration from the given path.
// If the file does not exist, an empty config is returned.
func LoadClientConfig(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ClientConfig{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to the given path, creating directories as needed.
func (c *ClientConfig) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
