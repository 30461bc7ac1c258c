package apm

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	return NewTracer("market.test"), exporter
}

func TestTracerStartSpanFromContext(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	ctx, span := tracer.StartSpanFromContext(context.Background(), "fetch_tickers")
	span.SetAttributes(attribute.Int("tickers", 3))

	if got := tracer.SpanFromContext(ctx); !got.SpanContext().Equal(span.SpanContext()) {
		t.Error("SpanFromContext should resolve the span started from that context")
	}

	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported spans = %d, want 1", len(spans))
	}
	if spans[0].Name != "fetch_tickers" {
		t.Errorf("span name = %q, want fetch_tickers", spans[0].Name)
	}

	var found bool
	for _, attr := range spans[0].Attributes {
		if attr.Key == "tickers" && attr.Value.AsInt64() == 3 {
			found = true
		}
	}
	if !found {
		t.Error("expected tickers=3 attribute on the exported span")
	}
}

func TestSpanNoticeError(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	_, span := tracer.StartSpanFromContext(context.Background(), "fetch_tickers")
	span.NoticeError(errors.New("HTTP 503"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported spans = %d, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status code = %v, want Error", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "HTTP 503" {
		t.Errorf("status description = %q, want the error text", spans[0].Status.Description)
	}
	if len(spans[0].Events) != 1 || spans[0].Events[0].Name != "exception" {
		t.Error("expected one recorded exception event")
	}
}
