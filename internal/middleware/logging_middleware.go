package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hanifn/catalog-backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// LoggingMiddleware tags each request with an ID, stores a request-scoped
// logger in the gin context and logs the outcome with latency and status.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		log := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
		})
		c.Set("logger", log)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"status_code": status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"body_size":   c.Writer.Size(),
			"query":       c.Request.URL.RawQuery,
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			log.Error("Request completed", nil, fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Info("Request completed", fields)
		}
	}
}

// GetLoggerFromContext returns the request-scoped logger, falling back to the
// global logger when the middleware did not run.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if v, exists := c.Get("logger"); exists {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
