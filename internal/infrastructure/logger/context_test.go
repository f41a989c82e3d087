package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_NoLogger(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	log.Info("dropped")
}

func TestContextValues(t *testing.T) {
	ctx := WithEntity(WithRequestID(context.Background(), "req-1"), "vendors")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "vendors", GetEntity(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetEntity(context.Background()))
}

func TestL_AddsCorrelationFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithEntity(ctx, "inventory")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	L(ctx).Info("row upserted")

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "inventory", fields["entity"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestL_WithoutCorrelation(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).Info("plain")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].ContextMap())
}
