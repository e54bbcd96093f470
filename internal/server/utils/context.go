package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"go.opentelemetry.io/otel/trace"
)

const (
	SpanContextKey = "span_context"
	RequestIDKey   = "request_id"
)

// GetSpanFromGinContext extracts the span context from Gin context
func GetSpanFromGinContext(c *gin.Context) trace.Span {
	return trace.SpanFromContext(GetContextFromGinContext(c))
}

// GetContextFromGinContext returns the request context carrying the span and
// the request ID.
func GetContextFromGinContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if spanCtx, exists := c.Get(SpanContextKey); exists {
		if sc, ok := spanCtx.(context.Context); ok {
			ctx = sc
		}
	}

	if requestID := GetRequestIDFromGinContext(c); requestID != "" {
		ctx = lookup.ContextWithRequestID(ctx, requestID)
	}
	return ctx
}

// GetRequestIDFromGinContext extracts request ID from Gin context
func GetRequestIDFromGinContext(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
