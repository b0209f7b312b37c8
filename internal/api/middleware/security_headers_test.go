package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSecurityRouter() *gin.Engine {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/licenses", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/docs/index.html", func(c *gin.Context) {
		c.String(http.StatusOK, "<html></html>")
	})
	return r
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newSecurityRouter()

	t.Run("json routes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/licenses", nil)
		r.ServeHTTP(w, req)

		expected := map[string]string{
			"X-Frame-Options":         "DENY",
			"X-Content-Type-Options":  "nosniff",
			"Referrer-Policy":         "strict-origin-when-cross-origin",
			"Content-Security-Policy": cspAPI,
		}
		for header, want := range expected {
			if got := w.Header().Get(header); got != want {
				t.Errorf("expected %s %q, got %q", header, want, got)
			}
		}
		if got := w.Header().Get("Strict-Transport-Security"); got != "" {
			t.Errorf("expected no Strict-Transport-Security without TLS, got %q", got)
		}
	})

	t.Run("docs routes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/docs/index.html", nil)
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Content-Security-Policy"); got != cspDocs {
			t.Errorf("expected docs CSP, got %q", got)
		}
	})

	t.Run("hsts with tls", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/licenses", nil)
		req.TLS = &tls.ConnectionState{}
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Strict-Transport-Security"); got == "" {
			t.Error("expected Strict-Transport-Security with TLS")
		}
	})
}
