// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the [trace.Tracer] bridges use to open a span per ingress
// dispatch and per egress pump run. When no SDK/TracerProvider has been
// configured by the embedding application, go.opentelemetry.io/otel's
// global provider returns a no-op tracer, so tracing is opt-in exactly like
// [SLogger] and stays silent by default.
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/ivykit/someip-gateway")
}

// StartSpan is a small convenience wrapper so bridge code doesn't need to
// import go.opentelemetry.io/otel/trace directly for the common case.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name)
}
