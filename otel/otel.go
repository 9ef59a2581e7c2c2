// otel.go: OpenTelemetry bridge for ember.
//
// Ember's own correlation primitive is Logger.PushTrace(TraceContext),
// not a context.Context extractor, so this package's job is narrower
// than a general OTel context propagator: pull a span's trace/span IDs
// out of an OTel SpanContext and hand them to PushTrace, add baggage
// members as an additional field overlay via PushScope, and fall back
// to a random v4 UUID pair when the context carries no valid span
// context at all (so a call site that always wants a trace ID gets one, traced
// or not).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"
	"os"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"

	"github.com/agilira/ember"
)

const maxBaggageFields = 10

// WithTracing derives a Scope from logger carrying the OTel span's trace
// context (or a freshly generated one, if ctx carries none), baggage
// members as fields, and auto-detected resource fields.
func WithTracing(logger *ember.Logger, ctx context.Context) *ember.Scope {
	tc := traceContextFrom(ctx)
	scope := logger.PushTrace(tc)

	if fields := baggageFields(ctx); len(fields) > 0 {
		scope = scope.Push(fields...)
	}
	if fields := resourceFields(); len(fields) > 0 {
		scope = scope.Push(fields...)
	}
	return scope
}

// traceContextFrom extracts an ember.TraceContext from ctx's OTel span
// context (recording or not), or synthesizes one from random UUIDs when
// ctx carries no valid span context.
func traceContextFrom(ctx context.Context) ember.TraceContext {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		flags := "00"
		if sc.IsSampled() {
			flags = "01"
		}
		return ember.TraceContext{
			TraceID: sc.TraceID().String(),
			SpanID:  sc.SpanID().String(),
			Flags:   flags,
		}
	}
	return syntheticTraceContext()
}

// syntheticTraceContext fabricates a 32-hex-char trace ID and a 16-hex-
// char span ID from two random UUIDs, for callers that want every
// record correlated even outside an active trace.
func syntheticTraceContext() ember.TraceContext {
	traceID := strings.ReplaceAll(uuid.New().String(), "-", "")
	spanID := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	return ember.TraceContext{TraceID: traceID, SpanID: spanID, Flags: "00"}
}

// baggageFields turns up to maxBaggageFields OTel baggage members into
// ember Fields, prefixed "baggage." to avoid colliding with call-site
// field names.
func baggageFields(ctx context.Context) []ember.Field {
	bag := baggage.FromContext(ctx)
	members := bag.Members()
	if len(members) == 0 {
		return nil
	}
	n := len(members)
	if n > maxBaggageFields {
		n = maxBaggageFields
	}
	fields := make([]ember.Field, 0, n)
	for _, m := range members[:n] {
		fields = append(fields, ember.Str("baggage."+m.Key(), m.Value()))
	}
	return fields
}

// resourceFields auto-detects service.name/service.version/
// deployment.environment from OTel/common environment variables and
// build info, the same discovery order a resource detector would use.
func resourceFields() []ember.Field {
	fields := make([]ember.Field, 0, 3)
	if name := serviceName(); name != "" {
		fields = append(fields, ember.Str("service.name", name))
	}
	if version := serviceVersion(); version != "" {
		fields = append(fields, ember.Str("service.version", version))
	}
	if env := deploymentEnvironment(); env != "" {
		fields = append(fields, ember.Str("deployment.environment", env))
	}
	return fields
}

func serviceName() string {
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		return v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		parts := strings.Split(info.Main.Path, "/")
		return parts[len(parts)-1]
	}
	return ""
}

func serviceVersion() string {
	if v := os.Getenv("OTEL_SERVICE_VERSION"); v != "" {
		return v
	}
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return ""
}

func deploymentEnvironment() string {
	if attrs := os.Getenv("OTEL_RESOURCE_ATTRIBUTES"); attrs != "" {
		for _, part := range strings.Split(attrs, ",") {
			if strings.HasPrefix(part, "deployment.environment=") {
				return strings.TrimPrefix(part, "deployment.environment=")
			}
		}
	}
	return os.Getenv("ENVIRONMENT")
}
