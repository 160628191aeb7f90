package workers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"adsettle/internal/models"
	"adsettle/internal/repositories/memory"
	"adsettle/internal/services/auction"
	"adsettle/internal/services/settlement"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Definition() gocron.JobDefinition {
	return gocron.DurationJob(time.Hour)
}

func (j *stubJob) Run(ctx context.Context) error { return j.run(ctx) }

func newTestManager(t *testing.T, store *memory.Store) *Manager {
	t.Helper()
	m, err := NewManager(store.JobRuns())
	require.NoError(t, err)
	t.Cleanup(m.Stop)
	return m
}

func lastRun(t *testing.T, store *memory.Store) *models.JobRun {
	t.Helper()
	runs, err := store.JobRuns().ListRecent(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0]
}

func TestRunJob_RecordsCompletion(t *testing.T) {
	store := memory.NewStore()
	m := newTestManager(t, store)

	m.runJob(&stubJob{name: "noop", run: func(context.Context) error { return nil }})

	run := lastRun(t, store)
	assert.Equal(t, "noop", run.Name)
	assert.Equal(t, models.JobRunStatusCompleted, run.Status)
	assert.Empty(t, run.Error)
	require.NotNil(t, run.FinishedAt)
	assert.False(t, run.StartedAt.IsZero())
}

func TestRunJob_RecordsFailure(t *testing.T) {
	store := memory.NewStore()
	m := newTestManager(t, store)

	m.runJob(&stubJob{name: "broken", run: func(context.Context) error {
		return errors.New("boom")
	}})

	run := lastRun(t, store)
	assert.Equal(t, models.JobRunStatusFailed, run.Status)
	assert.Equal(t, "boom", run.Error)
	require.NotNil(t, run.FinishedAt)
}

func TestRunJob_ContainsPanic(t *testing.T) {
	store := memory.NewStore()
	m := newTestManager(t, store)

	require.NotPanics(t, func() {
		m.runJob(&stubJob{name: "panicky", run: func(context.Context) error {
			panic("oh no")
		}})
	})

	run := lastRun(t, store)
	assert.Equal(t, models.JobRunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "panic")
	assert.Contains(t, run.Error, "oh no")
}

func TestRunJob_SurvivesAuditFailure(t *testing.T) {
	store := memory.NewStore()
	m := newTestManager(t, store)

	var executed bool
	store.FailJobRuns = true
	m.runJob(&stubJob{name: "unrecorded", run: func(context.Context) error {
		executed = true
		return nil
	}})
	store.FailJobRuns = false

	// The job still runs even when its audit row cannot be written.
	assert.True(t, executed)
	runs, err := store.JobRuns().ListRecent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestAuctionJob_RunsCycleForToday(t *testing.T) {
	store := memory.NewStore()

	channel := &models.Channel{OwnerID: 7, Category: "tech", SubscriberCount: 1000, Active: true}
	require.NoError(t, store.Channels().Create(channel))
	require.NoError(t, store.Ads().Create(&models.Ad{
		AdvertiserID: 1,
		Category:     "tech",
		BidType:      models.BidTypeCPC,
		BidAmount:    0.25,
		DailyBudget:  10.00,
		ContentRef:   "post:1",
		Status:       models.AdStatusApproved,
	}))

	job := NewAuctionJob(auction.NewService(store, auction.Config{}, nil), time.Hour)
	job.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	created, err := store.Auctions().GetByChannelAndDate(channel.ID, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusCompleted, created.Status)
}

func TestSettlementJob_CoversYesterdayAndToday(t *testing.T) {
	store := memory.NewStore()

	channel := &models.Channel{OwnerID: 7, Category: "tech", SubscriberCount: 1000, Active: true}
	require.NoError(t, store.Channels().Create(channel))
	ad := &models.Ad{
		AdvertiserID: 1,
		Category:     "tech",
		BidType:      models.BidTypeCPC,
		BidAmount:    0.25,
		DailyBudget:  100.00,
		ContentRef:   "post:1",
		Status:       models.AdStatusApproved,
	}
	require.NoError(t, store.Ads().Create(ad))

	// Unsettled revenue on both dates the job covers.
	require.NoError(t, store.Performance().Create(&models.PerformanceRecord{
		AdID: ad.ID, ChannelID: channel.ID, Date: "2024-12-31",
		Impressions: 100, Clicks: 4, Revenue: 1.00,
	}))
	require.NoError(t, store.Performance().Create(&models.PerformanceRecord{
		AdID: ad.ID, ChannelID: channel.ID, Date: "2025-01-01",
		Impressions: 200, Clicks: 8, Revenue: 2.00,
	}))

	svc := settlement.NewService(store, nil, settlement.Config{
		OwnerShare:     0.68,
		PlatformUserID: 1,
	}, nil)
	job := NewSettlementJob(svc, time.Hour)
	job.now = func() time.Time { return time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	owner, err := store.Balances().GetByUserID(7)
	require.NoError(t, err)
	assert.InDelta(t, 3.00*0.68, owner.Balance, 1e-9)

	platform, err := store.Balances().GetByUserID(1)
	require.NoError(t, err)
	assert.InDelta(t, 3.00*0.32, platform.Balance, 1e-9)
}

func TestSkipMonitor_LogsSkippedTicks(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	m := skipMonitor{}
	m.IncrementJob(uuid.New(), "auction_cycle", nil, gocron.SingletonRescheduled)
	m.IncrementJob(uuid.New(), "auction_cycle", nil, gocron.Success)
	m.IncrementJob(uuid.New(), "revenue_settlement", nil, gocron.Fail)

	out := buf.String()
	assert.Contains(t, out, "auction_cycle")
	assert.Contains(t, out, "skipped")
	assert.Equal(t, 1, strings.Count(out, "skipped"))
}
