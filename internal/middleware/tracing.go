package middleware

import (
	"fmt"

	"foodgram/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// fiberHeaderCarrier adapts fiber request headers to a propagation carrier.
type fiberHeaderCarrier struct {
	c *fiber.Ctx
}

func (f fiberHeaderCarrier) Get(key string) string { return f.c.Get(key) }
func (f fiberHeaderCarrier) Set(key, value string) { f.c.Set(key, value) }
func (f fiberHeaderCarrier) Keys() []string {
	keys := make([]string, 0)
	for k := range f.c.GetReqHeaders() {
		keys = append(keys, k)
	}
	return keys
}

var _ propagation.TextMapCarrier = fiberHeaderCarrier{}

// TracingMiddleware adds OpenTelemetry tracing to requests
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), fiberHeaderCarrier{c})

		spanName := fmt.Sprintf("%s %s", c.Method(), c.Path())
		ctx, span := observability.Tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		if requestID, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", requestID))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		if userID, ok := c.Locals("userID").(uint); ok {
			span.SetAttributes(attribute.Int64("user.id", int64(userID)))
		}

		return err
	}
}
