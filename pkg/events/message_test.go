package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

func TestNewEventMessage(t *testing.T) {
	eventID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	payload := map[string]any{"product_id": 7, "template_id": 11}

	msg, err := NewEventMessage(eventID, 2, payload)
	if err != nil {
		t.Fatalf("NewEventMessage: %v", err)
	}
	if msg.UUID == "" {
		t.Error("expected a message UUID")
	}
	if got := msg.Metadata.Get(MetadataEventID); got != eventID.String() {
		t.Errorf("event_id: got %q, want %q", got, eventID)
	}
	if got := msg.Metadata.Get(MetadataEventVersion); got != "2" {
		t.Errorf("event_version: got %q, want %q", got, "2")
	}

	var decoded map[string]float64
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["template_id"] != 11 {
		t.Errorf("unexpected payload: %s", msg.Payload)
	}
}

func TestNewEventMessage_UnmarshalablePayload(t *testing.T) {
	if _, err := NewEventMessage(uuid.New(), 1, make(chan int)); err == nil {
		t.Fatal("expected marshal error for channel payload")
	}
}

func TestEventID(t *testing.T) {
	msg := message.NewMessage("transport-uuid", nil)
	if got := EventID(msg); got != "transport-uuid" {
		t.Errorf("without metadata: got %q, want transport uuid", got)
	}
	msg.Metadata.Set(MetadataEventID, "domain-id")
	if got := EventID(msg); got != "domain-id" {
		t.Errorf("with metadata: got %q, want domain-id", got)
	}
}

func TestTracePropagation(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()
	want := span.SpanContext().TraceID()

	msgs := []*message.Message{message.NewMessage("a", nil), message.NewMessage("b", nil)}
	injectTrace(ctx, msgs)

	for _, msg := range msgs {
		got := trace.SpanFromContext(extractTrace(context.Background(), msg)).SpanContext()
		if !got.IsValid() {
			t.Fatalf("message %s: extracted span context is not valid", msg.UUID)
		}
		if got.TraceID() != want {
			t.Errorf("message %s: trace id %s, want %s", msg.UUID, got.TraceID(), want)
		}
	}
}

func TestTracePropagation_NoSpan(t *testing.T) {
	setupTracer()
	msg := message.NewMessage("id", nil)
	injectTrace(context.Background(), []*message.Message{msg})
	if got := trace.SpanFromContext(extractTrace(context.Background(), msg)); got.SpanContext().IsValid() {
		t.Error("expected no span context when publishing without a span")
	}
}
