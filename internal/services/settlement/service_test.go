package settlement

import (
	"context"
	"testing"
	"time"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2025-01-01"

func fixedNow() time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(store *memory.Store) Service {
	return NewService(store, nil, Config{
		OwnerShare:     0.68,
		PlatformUserID: 1,
		Now:            fixedNow,
	}, nil)
}

func seedChannel(t *testing.T, store *memory.Store, ownerID uint) *models.Channel {
	t.Helper()
	channel := &models.Channel{
		OwnerID:         ownerID,
		Category:        "tech",
		SubscriberCount: 1000,
		QualityScore:    1.0,
		Active:          true,
	}
	require.NoError(t, store.Channels().Create(channel))
	return channel
}

func seedAd(t *testing.T, store *memory.Store, bidType string, bid, budget float64) *models.Ad {
	t.Helper()
	ad := &models.Ad{
		AdvertiserID: 1,
		Category:     "tech",
		BidType:      bidType,
		BidAmount:    bid,
		DailyBudget:  budget,
		ContentRef:   "post:1",
		Status:       models.AdStatusApproved,
	}
	require.NoError(t, store.Ads().Create(ad))
	return ad
}

func TestRecordPerformance_CPCRevenue(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 1000, 40))

	record, err := store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1000, record.Impressions)
	assert.Equal(t, 40, record.Clicks)
	assert.InDelta(t, 0.04, record.CTR, 1e-9)
	// 40 clicks at $0.25 spends the whole $10 budget.
	assert.InDelta(t, 10.00, record.Revenue, 1e-9)
	assert.InDelta(t, 10.00, record.Cost, 1e-9)

	updated, err := store.Ads().GetByID(ad.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.00, updated.SpentAmount, 1e-9)
	assert.Equal(t, models.AdStatusCompleted, updated.Status)
}

func TestRecordPerformance_CPMRevenue(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPM, 2.00, 100.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 5000, 10))

	record, err := store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	// 5000 impressions at $2.00 per thousand.
	assert.InDelta(t, 10.00, record.Revenue, 1e-9)
}

func TestRecordPerformance_CumulativeDeltas(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.50, 100.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 100, 4))
	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 300, 10))

	record, err := store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 300, record.Impressions)
	assert.Equal(t, 10, record.Clicks)
	// Revenue accrues from the deltas, not the cumulative totals twice.
	assert.InDelta(t, 5.00, record.Revenue, 1e-9)

	updated, err := store.Ads().GetByID(ad.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.00, updated.SpentAmount, 1e-9)
	assert.Equal(t, models.AdStatusApproved, updated.Status)
}

func TestRecordPerformance_BudgetClamp(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 1.00, 5.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 1000, 20))

	record, err := store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	// 20 clicks would earn $20; the $5 budget caps the charge and the
	// excess is discarded.
	assert.InDelta(t, 5.00, record.Revenue, 1e-9)

	updated, err := store.Ads().GetByID(ad.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.00, updated.SpentAmount, 1e-9)
	assert.Equal(t, models.AdStatusCompleted, updated.Status)

	// Further delivery against an exhausted budget records counters but
	// earns nothing.
	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 2000, 40))
	record, err = store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 2000, record.Impressions)
	assert.InDelta(t, 5.00, record.Revenue, 1e-9)
}

func TestRecordPerformance_InvalidCounters(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	err := svc.RecordPerformance(context.Background(), ad.ID, channel.ID, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidCounters)

	err = svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 10, 20)
	assert.ErrorIs(t, err, ErrClicksExceedViews)
}

func TestRecordPerformance_CounterRegression(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 500, 10))

	err := svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 400, 10)
	assert.ErrorIs(t, err, ErrCounterRegression)

	// The stored row keeps the earlier totals.
	record, err := store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, 500, record.Impressions)
}

func TestRecordPerformance_UnknownAd(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	channel := seedChannel(t, store, 7)

	err := svc.RecordPerformance(context.Background(), 999, channel.ID, 100, 1)
	assert.ErrorIs(t, err, repositories.ErrAdNotFound)
}

func TestRecordPerformance_TracksDelivery(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	adID := ad.ID
	auction := &models.Auction{
		Date:             testDate,
		ChannelID:        channel.ID,
		WinningAdID:      &adID,
		WinningBidAmount: ad.BidAmount,
		Status:           models.AuctionStatusCompleted,
	}
	require.NoError(t, store.Auctions().Create(auction))

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 1000, 40))

	saved, err := store.Auctions().GetByID(auction.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, saved.ActualImpressions)

	// Observed CTR of 4% maps to 1.4; the quality score moves a fifth
	// of the way there from 1.0.
	updated, err := store.Channels().GetByID(channel.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.08, updated.QualityScore, 1e-9)
}

func TestSettleDay_SplitsRevenue(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 1000, 40))
	require.NoError(t, svc.SettleDay(context.Background(), testDate))

	owner, err := store.Balances().GetByUserID(7)
	require.NoError(t, err)
	assert.InDelta(t, 6.80, owner.Balance, 1e-9)
	assert.InDelta(t, 6.80, owner.TotalEarned, 1e-9)

	platform, err := store.Balances().GetByUserID(1)
	require.NoError(t, err)
	assert.InDelta(t, 3.20, platform.Balance, 1e-9)

	record, err := store.Performance().GetByKey(ad.ID, channel.ID, testDate)
	require.NoError(t, err)
	assert.InDelta(t, record.Revenue, record.SettledRevenue, 1e-9)
}

func TestSettleDay_Idempotent(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 1000, 40))
	require.NoError(t, svc.SettleDay(context.Background(), testDate))
	require.NoError(t, svc.SettleDay(context.Background(), testDate))

	owner, err := store.Balances().GetByUserID(7)
	require.NoError(t, err)
	assert.InDelta(t, 6.80, owner.Balance, 1e-9)
}

func TestSettleDay_PicksUpLateRevenue(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	channel := seedChannel(t, store, 7)
	ad := seedAd(t, store, models.BidTypeCPC, 0.25, 10.00)

	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 100, 8))
	require.NoError(t, svc.SettleDay(context.Background(), testDate))

	// More telemetry lands after the first settlement pass; only the
	// unsettled portion is credited by the second.
	require.NoError(t, svc.RecordPerformance(context.Background(), ad.ID, channel.ID, 1000, 40))
	require.NoError(t, svc.SettleDay(context.Background(), testDate))

	owner, err := store.Balances().GetByUserID(7)
	require.NoError(t, err)
	assert.InDelta(t, 6.80, owner.Balance, 1e-9)

	platform, err := store.Balances().GetByUserID(1)
	require.NoError(t, err)
	assert.InDelta(t, 3.20, platform.Balance, 1e-9)
}

func TestSettleDay_NothingToSettle(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	require.NoError(t, svc.SettleDay(context.Background(), testDate))

	_, err := store.Balances().GetByUserID(1)
	assert.ErrorIs(t, err, repositories.ErrBalanceNotFound)
}
