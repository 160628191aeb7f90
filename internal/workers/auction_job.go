package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"adsettle/internal/services/auction"

	"github.com/go-co-op/gocron/v2"
)

// AuctionJob runs the daily auction cycle for the current date.
// Re-running within the same day is safe: channels that already have
// an auction for the date are skipped.
type AuctionJob struct {
	svc      auction.Service
	interval time.Duration
	now      func() time.Time
}

func NewAuctionJob(svc auction.Service, interval time.Duration) *AuctionJob {
	return &AuctionJob{svc: svc, interval: interval, now: time.Now}
}

func (j *AuctionJob) Name() string { return "auction_cycle" }

func (j *AuctionJob) Definition() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *AuctionJob) Run(ctx context.Context) error {
	date := j.now().UTC().Format(dateLayout)
	results, err := j.svc.RunCycle(ctx, date)
	if err != nil {
		return fmt.Errorf("auction cycle for %s: %w", date, err)
	}

	var won, skipped, failed int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Skipped:
			skipped++
		default:
			won++
		}
	}
	log.Printf("auction cycle %s: %d matched, %d skipped, %d failed", date, won, skipped, failed)
	return nil
}
