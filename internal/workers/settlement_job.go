package workers

import (
	"context"
	"errors"
	"time"

	"adsettle/internal/services/settlement"

	"github.com/go-co-op/gocron/v2"
)

// SettlementJob settles revenue nightly. It covers both the previous
// and the current date so telemetry that arrives around midnight is
// still picked up; settlement is delta-based, so revisiting a date
// never double-credits.
type SettlementJob struct {
	svc      settlement.Service
	interval time.Duration
	now      func() time.Time
}

func NewSettlementJob(svc settlement.Service, interval time.Duration) *SettlementJob {
	return &SettlementJob{svc: svc, interval: interval, now: time.Now}
}

func (j *SettlementJob) Name() string { return "revenue_settlement" }

func (j *SettlementJob) Definition() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *SettlementJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	dates := []string{
		now.AddDate(0, 0, -1).Format(dateLayout),
		now.Format(dateLayout),
	}

	var failures []error
	for _, date := range dates {
		if err := j.svc.SettleDay(ctx, date); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}
