package middleware

import (
	"net/http"
	"strings"

	"github.com/MacJediWizard/licenze/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// An empty allowedOrigins allows every origin; this is logged as a warning,
// at error level in production.
func CORS(allowedOrigins []string, env config.Environment, logger zerolog.Logger) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	if allowAll {
		event := logger.Warn()
		if env == config.EnvProduction {
			event = logger.Error()
		}
		event.Str("component", "cors").Msg("CORS_ORIGINS is empty, all origins are allowed")
	}

	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[strings.ToLower(origin)] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := allowAll
		if !allowed && origin != "" {
			_, allowed = originSet[strings.ToLower(origin)]
		}

		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
