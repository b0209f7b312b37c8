// Package client provides an HTTP client for the licenze server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
)

// APIError is returned when the server answers with a non-200 status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is an HTTP client for communicating with the licenze server.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(serverURL string) *Client {
	return NewClientWithHTTP(serverURL, &http.Client{Timeout: 30 * time.Second})
}

// NewClientWithHTTP creates an API client that sends requests through hc.
func NewClientWithHTTP(serverURL string, hc *http.Client) *Client {
	return &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: hc,
	}
}

// CheckResult is the response of a license check. Reason is set only when
// Valid is false because the license is missing or expired.
type CheckResult struct {
	Valid    bool    `json:"valid"`
	Reason   string  `json:"reason,omitempty"`
	Role     *string `json:"role,omitempty"`
	Expires  string  `json:"expires,omitempty"`
	Username string  `json:"username"`
}

// Check asks the server whether username holds a valid license.
func (c *Client) Check(ctx context.Context, username string) (*CheckResult, error) {
	var result CheckResult
	if err := c.do(ctx, http.MethodGet, "/license?user="+url.QueryEscape(username), nil, &result); err != nil {
		return nil, fmt.Errorf("check license: %w", err)
	}
	return &result, nil
}

// List returns every license record.
func (c *Client) List(ctx context.Context) ([]models.License, error) {
	var licenses []models.License
	if err := c.do(ctx, http.MethodGet, "/licenses", nil, &licenses); err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return licenses, nil
}

// ChangeResult is returned by Add, Update and Delete.
type ChangeResult struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	License *models.License `json:"license,omitempty"`
	Deleted *models.License `json:"deleted,omitempty"`
}

// Add creates a license.
func (c *Client) Add(ctx context.Context, req models.CreateLicenseRequest) (*ChangeResult, error) {
	var result ChangeResult
	if err := c.do(ctx, http.MethodPost, "/license/add", req, &result); err != nil {
		return nil, fmt.Errorf("add license: %w", err)
	}
	return &result, nil
}

// LicenseUpdate lists the fields to change. Nil fields are left untouched;
// ClearRole sends an explicit null role.
type LicenseUpdate struct {
	Username  string
	Valid     *bool
	Role      *string
	ClearRole bool
	Expires   *string
	Notes     *string
}

func (u LicenseUpdate) body() map[string]any {
	body := map[string]any{"username": u.Username}
	if u.Valid != nil {
		body["valid"] = *u.Valid
	}
	if u.ClearRole {
		body["role"] = nil
	} else if u.Role != nil {
		body["role"] = *u.Role
	}
	if u.Expires != nil {
		body["expires"] = *u.Expires
	}
	if u.Notes != nil {
		body["notes"] = *u.Notes
	}
	return body
}

// Update changes the given fields of an existing license.
func (c *Client) Update(ctx context.Context, u LicenseUpdate) (*ChangeResult, error) {
	var result ChangeResult
	if err := c.do(ctx, http.MethodPut, "/license/update", u.body(), &result); err != nil {
		return nil, fmt.Errorf("update license: %w", err)
	}
	return &result, nil
}

// Delete removes a license.
func (c *Client) Delete(ctx context.Context, username string) (*ChangeResult, error) {
	var result ChangeResult
	if err := c.do(ctx, http.MethodDelete, "/license/delete?user="+url.QueryEscape(username), nil, &result); err != nil {
		return nil, fmt.Errorf("delete license: %w", err)
	}
	return &result, nil
}

// SendHeartbeat reports that name is alive. version may be empty.
func (c *Client) SendHeartbeat(ctx context.Context, name, version string) (*models.HeartbeatAck, error) {
	req := models.HeartbeatRequest{Name: name}
	if version != "" {
		req.Version = &version
	}
	var ack models.HeartbeatAck
	if err := c.do(ctx, http.MethodPost, "/heartbeat", req, &ack); err != nil {
		return nil, fmt.Errorf("send heartbeat: %w", err)
	}
	return &ack, nil
}

// History returns the most recent heartbeats, oldest first.
func (c *Client) History(ctx context.Context) ([]models.HeartbeatEvent, error) {
	var events []models.HeartbeatEvent
	if err := c.do(ctx, http.MethodGet, "/heartbeat/history", nil, &events); err != nil {
		return nil, fmt.Errorf("heartbeat history: %w", err)
	}
	return events, nil
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var result map[string]string
	if err := c.do(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return result, nil
}

// Version returns the server build information.
func (c *Client) Version(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "/version", nil, &result); err != nil {
		return nil, fmt.Errorf("server version: %w", err)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if result != nil {
		return json.Unmarshal(data, result)
	}
	return nil
}
