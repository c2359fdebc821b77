package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"imgd/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// requestID accepts a caller-supplied X-Request-ID or mints one, stores it
// in the request context and echoes it back on the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := observability.ContextWithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// telemetry opens the server span, times the request and records the
// HTTP metrics once the handler chain finishes.
func (s *Server) telemetry() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, span := s.obs.Tracer.StartSpan(c.Request.Context(), observability.SpanHTTPServer)
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", s.route(c)),
		)
		if sc := span.SpanContext(); sc.HasTraceID() {
			ctx = observability.ContextWithTraceID(ctx, sc.TraceID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.End()

		s.obs.Metrics.RecordHTTPServerRequest(ctx,
			c.Request.Method,
			s.route(c),
			status,
			duration,
			int64(c.Writer.Size()),
		)

		s.obs.Logger.WithContext(ctx).Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes", c.Writer.Size(),
		)
	}
}

func (s *Server) route(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}

// bodyLimit caps request bodies so a single oversized upload cannot hold
// the worker's memory.
func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
