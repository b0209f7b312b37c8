// Package httpclient builds the HTTP clients licenzectl uses, with optional
// HTTP or SOCKS5 proxying.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MacJediWizard/licenze/internal/config"
	"golang.org/x/net/proxy"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// New creates an HTTP client. A zero timeout means DefaultTimeout.
func New(timeout time.Duration, proxyCfg config.ProxyConfig) (*http.Client, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	switch {
	case proxyCfg.SOCKS5Proxy != "":
		dial, err := socks5Dialer(proxyCfg.SOCKS5Proxy)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dial
	case proxyCfg.HasProxy():
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			return proxyURL(req, proxyCfg)
		}
	}

	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

func socks5Dialer(rawURL string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse SOCKS5 proxy URL: %w", err)
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}, nil
}

// proxyURL picks the proxy for req, or nil when the host bypasses it.
func proxyURL(req *http.Request, cfg config.ProxyConfig) (*url.URL, error) {
	if bypassProxy(req.URL.Host, cfg.NoProxy) {
		return nil, nil
	}

	raw := cfg.HTTPProxy
	if req.URL.Scheme == "https" && cfg.HTTPSProxy != "" {
		raw = cfg.HTTPSProxy
	}
	if raw == "" {
		return nil, nil
	}
	return url.Parse(raw)
}

// bypassProxy matches host against a comma separated no_proxy list. Entries
// match exactly, as a domain suffix (".example.com" or "example.com"), or
// everything ("*").
func bypassProxy(host, noProxy string) bool {
	if noProxy == "" {
		return false
	}

	hostOnly, _, err := net.SplitHostPort(host)
	if err != nil {
		hostOnly = host
	}
	hostOnly = strings.ToLower(hostOnly)

	for _, pattern := range strings.Split(noProxy, ",") {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
			continue
		case pattern == "*", hostOnly == pattern:
			return true
		case strings.HasPrefix(pattern, "."):
			if strings.HasSuffix(hostOnly, pattern) {
				return true
			}
		case strings.HasSuffix(hostOnly, "."+pattern):
			return true
		}
	}
	return false
}

// Describe summarizes the proxy settings with credentials masked.
func Describe(cfg config.ProxyConfig) string {
	if !cfg.HasProxy() {
		return "none"
	}

	var parts []string
	if cfg.SOCKS5Proxy != "" {
		parts = append(parts, "SOCKS5: "+maskURL(cfg.SOCKS5Proxy))
	}
	if cfg.HTTPProxy != "" {
		parts = append(parts, "HTTP: "+maskURL(cfg.HTTPProxy))
	}
	if cfg.HTTPSProxy != "" {
		parts = append(parts, "HTTPS: "+maskURL(cfg.HTTPSProxy))
	}
	if cfg.NoProxy != "" {
		parts = append(parts, "NoProxy: "+cfg.NoProxy)
	}
	return strings.Join(parts, ", ")
}

func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			u.User = url.UserPassword(u.User.Username(), "****")
		}
	}
	return u.String()
}
