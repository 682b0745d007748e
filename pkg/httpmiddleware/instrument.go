package httpmiddleware

import (
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Instrument returns a middleware that wraps the handler with OpenTelemetry
// HTTP instrumentation: a span per request plus the standard http.server
// metrics, reported through the telemetry providers.
func Instrument(serviceName string, m *app.Telemetry) Middleware {
	return otelhttp.NewMiddleware(serviceName,
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
		otelhttp.WithPropagators(m.TextMapPropagator()),
	)
}
