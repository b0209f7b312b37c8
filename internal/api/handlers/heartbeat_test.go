package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/MacJediWizard/licenze/internal/licensing"
	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type mockHeartbeatService struct {
	history    []models.HeartbeatEvent
	err        error
	gotName    string
	gotVersion *string
}

func (m *mockHeartbeatService) RecordHeartbeat(_ context.Context, name string, version *string) (models.HeartbeatEvent, error) {
	m.gotName = name
	m.gotVersion = version
	if m.err != nil {
		return models.HeartbeatEvent{}, m.err
	}
	v := "unknown"
	if version != nil && *version != "" {
		v = *version
	}
	return models.HeartbeatEvent{Username: name, Version: v, Status: "active"}, nil
}

func (m *mockHeartbeatService) History(_ context.Context) []models.HeartbeatEvent {
	return m.history
}

type mockStreamer struct {
	called bool
}

func (m *mockStreamer) HandleWebSocket(w http.ResponseWriter, _ *http.Request) {
	m.called = true
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func setupHeartbeatTestRouter(svc HeartbeatService, streamer HeartbeatStreamer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHeartbeatHandler(svc, streamer, zerolog.Nop()).RegisterPublicRoutes(r)
	return r
}

func TestRecordHeartbeat(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		svc := &mockHeartbeatService{}
		r := setupHeartbeatTestRouter(svc, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/heartbeat", strings.NewReader(`{"name":"petar","version":"1.2"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var ack models.HeartbeatAck
		if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if ack.Status != "ok" || ack.Name != "petar" || ack.Version == nil || *ack.Version != "1.2" {
			t.Fatalf("unexpected ack: %+v", ack)
		}
	})

	t.Run("version omitted", func(t *testing.T) {
		svc := &mockHeartbeatService{}
		r := setupHeartbeatTestRouter(svc, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/heartbeat", strings.NewReader(`{"name":"petar"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		if svc.gotVersion != nil {
			t.Fatalf("expected nil version, got %q", *svc.gotVersion)
		}
		if strings.Contains(w.Body.String(), "version") {
			t.Fatalf("ack should omit version: %s", w.Body.String())
		}
	})

	t.Run("numeric version", func(t *testing.T) {
		svc := &mockHeartbeatService{}
		r := setupHeartbeatTestRouter(svc, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/heartbeat", strings.NewReader(`{"name":"petar","version":1.6}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if svc.gotVersion == nil || *svc.gotVersion != "1.6" {
			t.Fatalf("expected version 1.6, got %v", svc.gotVersion)
		}
	})

	t.Run("form body", func(t *testing.T) {
		svc := &mockHeartbeatService{}
		r := setupHeartbeatTestRouter(svc, nil)

		form := url.Values{"name": {"Kelloggs_"}, "version": {"2.0"}}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/heartbeat", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if svc.gotName != "Kelloggs_" || svc.gotVersion == nil || *svc.gotVersion != "2.0" {
			t.Fatalf("unexpected binding: name=%q version=%v", svc.gotName, svc.gotVersion)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		svc := &mockHeartbeatService{err: licensing.ErrMissingParameter}
		r := setupHeartbeatTestRouter(svc, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/heartbeat", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
		if resp := decodeMap(t, w); resp["error"] != "missing name parameter" {
			t.Fatalf("unexpected error: %v", resp["error"])
		}
	})
}

func TestHeartbeatHistory(t *testing.T) {
	svc := &mockHeartbeatService{history: []models.HeartbeatEvent{
		{Username: "a", Version: "1", Status: "active"},
		{Username: "b", Version: "unknown", Status: "active"},
	}}
	r := setupHeartbeatTestRouter(svc, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/heartbeat/history", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp []models.HeartbeatEvent
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(resp) != 2 || resp[0].Username != "a" {
		t.Fatalf("unexpected history: %+v", resp)
	}
}

func TestHeartbeatStreamRoute(t *testing.T) {
	t.Run("registered with streamer", func(t *testing.T) {
		streamer := &mockStreamer{}
		r := setupHeartbeatTestRouter(&mockHeartbeatService{}, streamer)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/heartbeat/stream", nil)
		r.ServeHTTP(w, req)

		if !streamer.called {
			t.Fatal("expected streamer to handle the request")
		}
	})

	t.Run("absent without streamer", func(t *testing.T) {
		r := setupHeartbeatTestRouter(&mockHeartbeatService{}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/heartbeat/stream", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})
}
