package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/logging"
)

// CORSMiddleware allows the configured origins. An empty list allows any
// origin, which suits the local desktop front end.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := len(allowedOrigins) == 0 ||
			slices.Contains(allowedOrigins, "*") ||
			slices.Contains(allowedOrigins, origin)

		if allowed {
			h := c.Writer.Header()
			if origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			} else if len(allowedOrigins) > 0 {
				h.Set("Access-Control-Allow-Origin", allowedOrigins[0])
			}

			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+logging.RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", logging.RequestIDHeader)
			h.Set("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
