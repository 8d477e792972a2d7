package middleware

import (
	"time"

	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the middleware
const (
	ContextRequestID = "request_id"
	ContextLogger    = "logger"
	ContextChatID    = "chat_id"
)

// HeaderRequestID echoes the request id back to the client
const HeaderRequestID = "X-Request-ID"

func RequestLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		reqLogger := log.WithRequestID(requestID)
		c.Set(ContextLogger, reqLogger)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		reqLogger.Debugw("Request started",
			"method", method,
			"path", path,
			"client_ip", c.ClientIP(),
		)

		c.Next()

		fields := []interface{}{
			"method", method,
			"path", path,
			"status_code", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if chatID, ok := ChatIDFrom(c); ok {
			fields = append(fields, "chat_id", chatID)
		}
		reqLogger.Infow("Request completed", fields...)
	}
}

// LoggerFrom returns the request-scoped logger, or fallback outside a request
func LoggerFrom(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if v, ok := c.Get(ContextLogger); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return fallback
}
