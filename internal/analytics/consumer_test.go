package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/pkg/enums"
	"github.com/campuskart/campuskart-backend/pkg/logger"
	"github.com/campuskart/campuskart-backend/pkg/outbox"
)

type fakeInserter struct {
	rows   []any
	tables []string
	err    error
}

func (f *fakeInserter) InsertRows(ctx context.Context, table string, rows []any) error {
	f.tables = append(f.tables, table)
	f.rows = append(f.rows, rows...)
	return f.err
}

type fakeIdempotency struct {
	already   bool
	checkErr  error
	deleted   []uuid.UUID
	deleteErr error
}

func (f *fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	return f.already, f.checkErr
}

func (f *fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

func newTestConsumer(inserter *fakeInserter, manager *fakeIdempotency) *Consumer {
	return &Consumer{
		client:  inserter,
		table:   "order_events",
		manager: manager,
		logg: logger.New(logger.Options{
			ServiceName: "analytics-test",
			Level:       logger.ParseLevel("debug"),
			Output:      io.Discard,
		}),
	}
}

func buildEnvelope(t *testing.T, eventID uuid.UUID, payload any) outbox.PayloadEnvelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

func TestAnalyticsConsumerProcessesStatusChange(t *testing.T) {
	inserter := &fakeInserter{}
	consumer := newTestConsumer(inserter, &fakeIdempotency{})

	orderID := uuid.New()
	groupID := uuid.New()
	envelope := buildEnvelope(t, uuid.New(), map[string]any{
		"order_id":    orderID.String(),
		"group_id":    groupID.String(),
		"user_id":     uuid.NewString(),
		"seller_id":   uuid.NewString(),
		"from_status": "processing",
		"to_status":   "packed",
	})
	envelope.Actor = &outbox.ActorRef{UserID: uuid.New(), Role: "seller"}

	if err := consumer.Process(context.Background(), enums.EventOrderStatusChanged, envelope); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(inserter.rows) != 1 {
		t.Fatalf("expected 1 row inserted, got %d", len(inserter.rows))
	}
	if inserter.tables[0] != "order_events" {
		t.Fatalf("unexpected table %q", inserter.tables[0])
	}
	row, ok := inserter.rows[0].(*orderEventRow)
	if !ok {
		t.Fatalf("expected orderEventRow, got %T", inserter.rows[0])
	}
	if row.EventType != string(enums.EventOrderStatusChanged) {
		t.Fatalf("unexpected event type: %s", row.EventType)
	}
	if row.OrderID == nil || *row.OrderID != orderID.String() {
		t.Fatalf("order id mismatch")
	}
	if row.GroupID == nil || *row.GroupID != groupID.String() {
		t.Fatalf("group id mismatch")
	}
	if row.FromStatus == nil || *row.FromStatus != "processing" {
		t.Fatalf("from status mismatch")
	}
	if row.ToStatus == nil || *row.ToStatus != "packed" {
		t.Fatalf("to status mismatch")
	}
	if row.ActorRole == nil || *row.ActorRole != "seller" {
		t.Fatalf("actor role mismatch")
	}
	if !row.Payload.Valid {
		t.Fatalf("payload should be valid json")
	}
}

func TestAnalyticsConsumerGroupLevelEvent(t *testing.T) {
	inserter := &fakeInserter{}
	consumer := newTestConsumer(inserter, &fakeIdempotency{})

	groupID := uuid.New()
	envelope := buildEnvelope(t, uuid.New(), map[string]any{
		"group_id":  groupID.String(),
		"user_id":   uuid.NewString(),
		"order_ids": []string{uuid.NewString(), uuid.NewString()},
	})

	if err := consumer.Process(context.Background(), enums.EventOrderGroupCreated, envelope); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	row := inserter.rows[0].(*orderEventRow)
	if row.GroupID == nil || *row.GroupID != groupID.String() {
		t.Fatalf("group id mismatch")
	}
	if row.OrderID != nil {
		t.Fatalf("order id should be nil for group-level event")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(row.Payload.JSONVal), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if _, ok := payload["order_ids"]; !ok {
		t.Fatalf("payload missing order_ids")
	}
}

func TestAnalyticsConsumerIsIdempotent(t *testing.T) {
	inserter := &fakeInserter{}
	consumer := newTestConsumer(inserter, &fakeIdempotency{already: true})

	envelope := buildEnvelope(t, uuid.New(), map[string]any{})
	if err := consumer.Process(context.Background(), enums.EventOrderGroupCreated, envelope); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if len(inserter.rows) != 0 {
		t.Fatalf("expected no rows inserted when idempotent")
	}
}

func TestAnalyticsConsumerDeletesOnInsertFailure(t *testing.T) {
	inserter := &fakeInserter{err: errors.New("bigquery down")}
	manager := &fakeIdempotency{}
	consumer := newTestConsumer(inserter, manager)

	envelope := buildEnvelope(t, uuid.New(), map[string]any{
		"group_id": uuid.NewString(),
	})
	if err := consumer.Process(context.Background(), enums.EventGroupFeeSettled, envelope); err == nil {
		t.Fatalf("expected error when insert fails")
	}
	if len(manager.deleted) != 1 {
		t.Fatalf("expected idempotency key deletion on failure")
	}
}

func TestAnalyticsConsumerDeletesOnPayloadDecodeFailure(t *testing.T) {
	inserter := &fakeInserter{}
	manager := &fakeIdempotency{}
	consumer := newTestConsumer(inserter, manager)

	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       []byte("{invalid json"),
	}
	if err := consumer.Process(context.Background(), enums.EventOrderReturnRequested, envelope); err == nil {
		t.Fatalf("expected error for bad payload")
	}
	if len(manager.deleted) != 1 {
		t.Fatalf("expected idempotency key deletion on payload error")
	}
	if len(inserter.rows) != 0 {
		t.Fatalf("expected no rows inserted on payload failure")
	}
}

func TestAnalyticsConsumerSkipsUnknownEventType(t *testing.T) {
	inserter := &fakeInserter{}
	manager := &fakeIdempotency{}
	consumer := newTestConsumer(inserter, manager)

	envelope := buildEnvelope(t, uuid.New(), map[string]any{})
	if err := consumer.Process(context.Background(), enums.OutboxEventType("cart_checked_out"), envelope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inserter.rows) != 0 {
		t.Fatalf("expected unsupported event to be skipped")
	}
	if len(manager.deleted) != 0 {
		t.Fatalf("idempotency delete should not run")
	}
}

func TestAnalyticsConsumerSkipsMalformedEventID(t *testing.T) {
	inserter := &fakeInserter{}
	consumer := newTestConsumer(inserter, &fakeIdempotency{})

	envelope := buildEnvelope(t, uuid.New(), map[string]any{})
	envelope.EventID = "not-a-uuid"
	if err := consumer.Process(context.Background(), enums.EventOrderStatusChanged, envelope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inserter.rows) != 0 {
		t.Fatalf("expected malformed event id to be skipped")
	}
}
