package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// quietPaths are logged at debug level on success; probes and scrapes hit them constantly.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger logs one line per request. The only query parameter the API
// reads is ?user=, which is logged as its own field so license lookups can be
// traced per username; the rest of the query string is not logged.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "http").Logger()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		case quietPaths[path]:
			event = log.Debug()
		default:
			event = log.Info()
		}

		if users := c.QueryArray("user"); len(users) > 0 {
			event = event.Strs("user", users)
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
