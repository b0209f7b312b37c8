package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("expected uuid request id, got %q", id)
		}
		if w.Body.String() != id {
			t.Errorf("expected context id %q, got %q", id, w.Body.String())
		}
	})

	t.Run("reuses valid incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, incoming)
		r.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != incoming {
			t.Errorf("expected %q, got %q", incoming, got)
		}
	})

	t.Run("replaces malformed incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		r.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got == "<script>" {
			t.Error("expected malformed id to be replaced")
		}
	})
}
