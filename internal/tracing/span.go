// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package tracing exposes the active unit of work to integrations.
//
// The active unit of work is the recording OpenTelemetry span carried by the
// context. Integrations label it but never assume it exists.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ResourceKey is the span attribute holding the resource label.
const ResourceKey = attribute.Key("resource.name")

// Active returns the span carried by ctx if it is recording.
func Active(ctx context.Context) (trace.Span, bool) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil, false
	}
	return span, true
}

// SetResource labels the active span with label. It reports whether a span
// was labeled; an empty label or missing span is not an error.
func SetResource(ctx context.Context, label string) bool {
	if label == "" {
		return false
	}
	span, ok := Active(ctx)
	if !ok {
		return false
	}
	span.SetAttributes(ResourceKey.String(label))
	return true
}
