package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campuskart/campuskart-backend/pkg/logger"
)

type fakeOrderSweeper struct {
	batches    []int
	lastCutoff time.Time
	calls      int
	err        error
}

func (f *fakeOrderSweeper) CancelStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.lastCutoff = cutoff
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	count := f.batches[0]
	f.batches = f.batches[1:]
	return count, nil
}

func newStaleOrderJob(t *testing.T, sweeper *fakeOrderSweeper, ttl time.Duration, batch int) *staleOrderJob {
	t.Helper()
	jobIface, err := NewStaleOrderJob(StaleOrderJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Orders:    sweeper,
		TTL:       ttl,
		BatchSize: batch,
	})
	if err != nil {
		t.Fatalf("NewStaleOrderJob: %v", err)
	}
	job, ok := jobIface.(*staleOrderJob)
	if !ok {
		t.Fatalf("expected staleOrderJob, got %T", jobIface)
	}
	return job
}

func TestStaleOrderJobComputesCutoffFromTTL(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeOrderSweeper{batches: []int{3}}
	job := newStaleOrderJob(t, sweeper, 48*time.Hour, 100)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expected := now.Add(-48 * time.Hour)
	if !sweeper.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, sweeper.lastCutoff)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep call, got %d", sweeper.calls)
	}
}

func TestStaleOrderJobDrainsFullBatches(t *testing.T) {
	sweeper := &fakeOrderSweeper{batches: []int{2, 2, 1}}
	job := newStaleOrderJob(t, sweeper, time.Hour, 2)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 3 {
		t.Fatalf("expected 3 sweep calls, got %d", sweeper.calls)
	}
}

func TestStaleOrderJobPropagatesErrors(t *testing.T) {
	sweeper := &fakeOrderSweeper{err: errors.New("boom")}
	job := newStaleOrderJob(t, sweeper, time.Hour, 10)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStaleOrderJobDefaults(t *testing.T) {
	job := newStaleOrderJob(t, &fakeOrderSweeper{}, 0, 0)
	if job.ttl != defaultPendingConfirmationTTL {
		t.Fatalf("expected default ttl, got %s", job.ttl)
	}
	if job.batch != defaultStaleSweepBatch {
		t.Fatalf("expected default batch, got %d", job.batch)
	}
}
