// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

package bpmn

import (
	"testing"

	otelPkg "github.com/pbinitiative/zendcr/pkg/otel"
	"github.com/pbinitiative/zendcr/pkg/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracerprovider := trace.NewTracerProvider(
		trace.WithBatcher(
			exporter,
			trace.WithBatchTimeout(0),
		),
	)
	origTracer := otel.GetTracerProvider()
	defer otel.SetTracerProvider(origTracer)
	otel.SetTracerProvider(tracerprovider)

	tracedEngine := NewEngine(
		EngineWithStorage(inmemory.NewStorage(getGlobalSnowflakeIdGenerator())),
		EngineWithTranslationCache(inmemory.NewTranslationCache(4, 0)),
	)
	ctx, parent := tracerprovider.Tracer("test-tracer").Start(t.Context(), "parent-test-span")

	definition, err := tracedEngine.LoadFromFile(ctx, "./test-cases/exclusive-gateway.bpmn")
	require.NoError(t, err)
	_, err = tracedEngine.LoadFromFile(ctx, "./test-cases/exclusive-gateway.bpmn")
	require.NoError(t, err)
	state, err := tracedEngine.CreateSimulation(ctx, definition.Key)
	require.NoError(t, err)
	_, err = tracedEngine.ExecuteEvent(ctx, state.Key, "start")
	assert.NoError(t, err)
	_, err = tracedEngine.ExecuteEvent(ctx, state.Key, "end")
	assert.Error(t, err)

	parent.End()

	tracerprovider.ForceFlush(ctx)
	spans := exporter.GetSpans()
	cached := []bool{}
	for _, span := range spans {
		if span.SpanContext.SpanID() == parent.SpanContext().SpanID() {
			continue
		}
		assert.Equal(t, parent.SpanContext().TraceID(), span.Parent.TraceID())
		for _, attr := range span.Attributes {
			if string(attr.Key) == otelPkg.AttributeCached {
				cached = append(cached, attr.Value.AsBool())
			}
		}
	}
	// 2 loads, 1 create, 2 executions and the parent
	assert.Len(t, spans, 6)
	assert.Equal(t, []bool{false, true}, cached)
}
