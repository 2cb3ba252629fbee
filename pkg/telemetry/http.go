package telemetry

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader echoes the request's trace id back to the client
const TraceIDHeader = "X-Trace-ID"

// GinMiddleware extracts incoming trace context, opens a server span per request
// and records request duration. metrics may be nil.
func GinMiddleware(metrics *TenantMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := StartSpan(ctx, fmt.Sprintf("%s %s", c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		if traceID := GetTraceID(ctx); traceID != "" {
			c.Header(TraceIDHeader, traceID)
		}
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(MethodAttr(c.Request.Method), RouteAttr(route), StatusCodeAttr(status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}

		if metrics != nil {
			metrics.RequestDuration.Record(ctx, time.Since(start).Seconds(),
				MethodAttr(c.Request.Method), RouteAttr(route), StatusCodeAttr(status),
			)
		}
	}
}
