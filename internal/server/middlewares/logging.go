package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingMiddleware writes one access log line per request. Requests to
// skipPaths are served but not logged.
func LoggingMiddleware(logger *zap.Logger, utc bool, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		ts := time.Now()
		if utc {
			ts = ts.UTC()
		}
		status := c.Writer.Status()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		fields := []zap.Field{
			zap.Time("ts_request", ts),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", routeOf(c)),
			zap.Int("status", status),
			zap.Duration("latency", ts.Sub(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}

		if city := c.Query("city"); city != "" {
			fields = append(fields, zap.String("city", city))
		}
		if requestID := requestIDOf(c); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if userAgent := c.Request.UserAgent(); userAgent != "" {
			fields = append(fields, zap.String("user_agent", userAgent))
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// RecoveryMiddleware turns a handler panic into a 500 JSON error.
func RecoveryMiddleware(logger *zap.Logger, stack bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Any("recovered", recovered),
		}
		if requestID := requestIDOf(c); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if stack {
			fields = append(fields, zap.Stack("stack"))
		}

		logger.Error("HTTP panic recovered", fields...)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  "INTERNAL_ERROR",
		})
	})
}

func requestIDOf(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
