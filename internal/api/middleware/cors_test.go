package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newCORSRouter(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(CORS(origins, config.EnvDevelopment, zerolog.Nop()))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.OPTIONS("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("allowed origin", func(t *testing.T) {
		r := newCORSRouter([]string{"https://lic.example.com", "https://admin.example.com"})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://LIC.example.com")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://LIC.example.com" {
			t.Fatalf("expected origin echoed, got %q", got)
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		r := newCORSRouter([]string{"https://lic.example.com"})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected no Access-Control-Allow-Origin header, got %q", got)
		}
	})

	t.Run("empty list allows all", func(t *testing.T) {
		r := newCORSRouter(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("expected origin allowed, got %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		r := newCORSRouter([]string{"https://lic.example.com"})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "https://lic.example.com")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Fatal("expected Access-Control-Allow-Methods header")
		}
	})

	t.Run("production with no origins does not panic", func(t *testing.T) {
		mw := CORS(nil, config.EnvProduction, zerolog.Nop())
		if mw == nil {
			t.Fatal("expected middleware")
		}
	})
}
