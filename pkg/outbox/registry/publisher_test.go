package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
)

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "domain-topic"})
	if err != nil {
		t.Fatalf("new event registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, data json.RawMessage) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	inviteeID := uuid.New()
	payloadBytes := mustMarshal(t, payloads.AssociationActivatedEvent{
		AssociationID: uuid.New(),
		CompanyID:     uuid.New(),
		InviteeID:     inviteeID,
		Kind:          enums.InviteeKindDispatcher,
		JoinedAt:      time.Now().UTC(),
	})

	event := models.OutboxEvent{
		EventType:     enums.EventAssociationActivated,
		AggregateType: enums.AggregateDispatcherAssociation,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "domain-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.AssociationActivatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.InviteeID != inviteeID {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if resolved.Envelope.EventID == "" {
		t.Fatalf("envelope missing event id")
	}
}

func TestEventRegistryResolveDriverAggregate(t *testing.T) {
	reg := newTestEventRegistry(t)

	payloadBytes := mustMarshal(t, payloads.AssociationActivatedEvent{
		AssociationID: uuid.New(),
		CompanyID:     uuid.New(),
		InviteeID:     uuid.New(),
		Kind:          enums.InviteeKindDriver,
	})

	event := models.OutboxEvent{
		EventType:     enums.EventAssociationActivated,
		AggregateType: enums.AggregateDriverAssociation,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, payloadBytes),
	}

	if _, err := reg.Resolve(event); err != nil {
		t.Fatalf("driver aggregate should resolve: %v", err)
	}
}

func TestEventRegistryResolveUnknownEvent(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     enums.OutboxEventType("mystery"),
		AggregateType: enums.AggregateLoad,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, json.RawMessage(`{}`)),
	}

	_, err := reg.Resolve(event)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestEventRegistryResolveAggregateMismatch(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     enums.EventLoadAssigned,
		AggregateType: enums.AggregateCompany,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, json.RawMessage(`{}`)),
	}

	_, err := reg.Resolve(event)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestEventRegistryResolveMissingPayload(t *testing.T) {
	reg := newTestEventRegistry(t)

	event := models.OutboxEvent{
		EventType:     enums.EventInviteIssued,
		AggregateType: enums.AggregateDispatcherAssociation,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, json.RawMessage(`null`)),
	}

	_, err := reg.Resolve(event)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected error when domain topic missing")
	}
}
