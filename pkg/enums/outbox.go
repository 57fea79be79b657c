package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateDispatcherAssociation OutboxAggregateType = "dispatcher_association"
	AggregateDriverAssociation     OutboxAggregateType = "driver_association"
	AggregateCompany               OutboxAggregateType = "company"
	AggregateLoad                  OutboxAggregateType = "load"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDispatcherAssociation,
	AggregateDriverAssociation,
	AggregateCompany,
	AggregateLoad,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventAssociationActivated   OutboxEventType = "association_activated"
	EventAssociationDeactivated OutboxEventType = "association_deactivated"
	EventInviteIssued           OutboxEventType = "invite_issued"
	EventInviteRevoked          OutboxEventType = "invite_revoked"
	EventLoadAssigned           OutboxEventType = "load_assigned"
	EventLoadUnassigned         OutboxEventType = "load_unassigned"
	EventLoadStatusChanged      OutboxEventType = "load_status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventAssociationActivated,
	EventAssociationDeactivated,
	EventInviteIssued,
	EventInviteRevoked,
	EventLoadAssigned,
	EventLoadUnassigned,
	EventLoadStatusChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason classifies why a row landed in the dead-letter table.
type OutboxDLQErrorReason string

const (
	DLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

// IsValid reports whether the value is a known DLQ error reason.
func (r OutboxDLQErrorReason) IsValid() bool {
	return r == DLQReasonNonRetryable || r == DLQReasonMaxAttempts
}
