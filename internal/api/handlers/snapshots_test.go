package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MacJediWizard/licenze/internal/maintenance"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type mockSnapshotService struct {
	result *maintenance.SnapshotResult
	status maintenance.SnapshotStatus
	err    error
}

func (m *mockSnapshotService) Snapshot(_ context.Context) (*maintenance.SnapshotResult, error) {
	return m.result, m.err
}

func (m *mockSnapshotService) Status() maintenance.SnapshotStatus {
	return m.status
}

func setupSnapshotTestRouter(svc SnapshotService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewSnapshotHandler(svc, zerolog.Nop()).RegisterPublicRoutes(r)
	return r
}

func TestSnapshotStatus(t *testing.T) {
	svc := &mockSnapshotService{status: maintenance.SnapshotStatus{Running: true, Schedule: "0 3 * * *"}}
	r := setupSnapshotTestRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/snapshots", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp maintenance.SnapshotStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !resp.Running || resp.Schedule != "0 3 * * *" {
		t.Fatalf("unexpected status: %+v", resp)
	}
}

func TestSnapshotTrigger(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockSnapshotService{result: &maintenance.SnapshotResult{Name: "licenze-20261018T093000.000Z.json.gz", Licenses: 2}}
		r := setupSnapshotTestRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/snapshots", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var resp maintenance.SnapshotResult
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if resp.Licenses != 2 {
			t.Fatalf("expected 2 licenses, got %d", resp.Licenses)
		}
	})

	t.Run("failure", func(t *testing.T) {
		svc := &mockSnapshotService{err: errors.New("all sinks failed")}
		r := setupSnapshotTestRouter(svc)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/snapshots", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", w.Code)
		}
	})
}
