package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/campuskart/campuskart-backend/pkg/logger"
)

const (
	defaultPendingConfirmationTTL = 48 * time.Hour
	defaultStaleSweepBatch        = 200
)

// StaleOrderJobParams configure the pending confirmation sweep.
type StaleOrderJobParams struct {
	Logger    *logger.Logger
	Orders    staleOrderSweeper
	TTL       time.Duration
	BatchSize int
}

type staleOrderSweeper interface {
	CancelStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// NewStaleOrderJob builds the cron job that cancels orders whose sellers
// never confirmed within the TTL.
func NewStaleOrderJob(params StaleOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingConfirmationTTL
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultStaleSweepBatch
	}
	return &staleOrderJob{
		logg:   params.Logger,
		orders: params.Orders,
		ttl:    ttl,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type staleOrderJob struct {
	logg   *logger.Logger
	orders staleOrderSweeper
	ttl    time.Duration
	batch  int
	now    func() time.Time
}

func (j *staleOrderJob) Name() string { return "stale-order-sweep" }

func (j *staleOrderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	total := 0
	for {
		cancelled, err := j.orders.CancelStalePending(ctx, cutoff, j.batch)
		total += cancelled
		if err != nil {
			return fmt.Errorf("stale order sweep: %w", err)
		}
		// A short batch means the backlog is drained; conflict-skipped rows
		// left the pending state and will not reappear.
		if cancelled < j.batch {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"cancelled": total,
	})
	j.logg.Info(logCtx, "stale order sweep complete")
	return nil
}
