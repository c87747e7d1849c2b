package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

func TestMessage_CarriesPayloadAndTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	ap := &models.Appointment{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		ServiceID:  uuid.New(),
		ClientID:   uuid.New(),
		StaffID:    models.AnyStaff,
		StartTime:  time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2030, 3, 4, 9, 30, 0, 0, time.UTC),
		Status:     "confirmed",
	}
	ev := FromAppointment(TypeAppointmentConfirmed, ap, time.Now())

	msg, err := Message(ctx, ev)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}

	if string(msg.Key) != ap.BusinessID.String() {
		t.Fatalf("expected business key, got %s", msg.Key)
	}

	carrier := &headerCarrier{headers: msg.Headers}
	if carrier.Get("event_type") != TypeAppointmentConfirmed {
		t.Fatalf("missing event_type header: %+v", msg.Headers)
	}
	if tp := carrier.Get("traceparent"); tp != "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01" {
		t.Fatalf("unexpected traceparent %q", tp)
	}

	var decoded AppointmentEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.AppointmentID != ap.ID || decoded.Type != TypeAppointmentConfirmed {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}
