package middleware

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uniedit/orgauth/internal/shared/logger"
)

// Logging returns a middleware that logs HTTP requests.
func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := redactQuery(c.Request.URL.Query())

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		userAgent := c.Request.UserAgent()

		// Build log entry
		attrs := []any{
			"status", status,
			"method", method,
			"path", path,
			"latency_ms", latency.Milliseconds(),
			"client_ip", clientIP,
		}

		if query != "" {
			attrs = append(attrs, "query", query)
		}

		if userAgent != "" {
			attrs = append(attrs, "user_agent", userAgent)
		}

		if requestID := GetRequestID(c); requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}

		if userID := GetUserID(c); userID != uuid.Nil {
			attrs = append(attrs, "user_id", userID.String())
		}

		// Add error if present
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		// Log based on status code
		msg := "HTTP Request"
		switch {
		case status >= 500:
			log.Error(msg, attrs...)
		case status >= 400:
			log.Warn(msg, attrs...)
		default:
			log.Info(msg, attrs...)
		}
	}
}

// Query parameters that may carry invitation tokens or session tokens.
var sensitiveParams = []string{"token", "access_token"}

func redactQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	for _, k := range sensitiveParams {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	return q.Encode()
}
