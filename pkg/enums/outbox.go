package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder      OutboxAggregateType = "order"
	AggregateOrderGroup OutboxAggregateType = "order_group"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOrderGroup,
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
	EventOrderGroupCreated    OutboxEventType = "order_group_created"
	EventOrderStatusChanged   OutboxEventType = "order_status_changed"
	EventOrderReturnRequested OutboxEventType = "order_return_requested"
	EventGroupFeeSettled      OutboxEventType = "group_fee_settled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderGroupCreated,
	EventOrderStatusChanged,
	EventOrderReturnRequested,
	EventGroupFeeSettled,
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
