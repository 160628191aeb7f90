// Package settlement converts tracked impressions and clicks into
// revenue, enforces daily spend caps, and splits earned revenue
// between channel owners and the platform.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/services/events"
	"adsettle/internal/services/ledger"
)

// qualityFeedbackWeight controls how fast observed CTR moves a
// channel's quality score.
const qualityFeedbackWeight = 0.2

// Config holds settlement settings.
type Config struct {
	// OwnerShare is the channel owner's fraction of earned revenue.
	// The platform share is the remainder, so the two always sum to 1.
	OwnerShare float64
	// PlatformUserID is the ledger account credited with the platform
	// share.
	PlatformUserID uint
	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

type Service interface {
	RecordPerformance(ctx context.Context, adID, channelID uint, impressions, clicks int) error
	SettleDay(ctx context.Context, date string) error
}

type service struct {
	store   repositories.Store
	cache   ledger.BalanceCache
	config  Config
	emitter events.Emitter
}

// NewService creates the settler. Balance rows are credited inside the
// settlement transaction; cache (optional) is only used to drop stale
// cached balances after a commit.
func NewService(store repositories.Store, cache ledger.BalanceCache, config Config, emitter events.Emitter) Service {
	if store == nil {
		panic("store is required")
	}
	if config.OwnerShare <= 0 || config.OwnerShare >= 1 {
		config.OwnerShare = 0.68
	}
	if config.PlatformUserID == 0 {
		config.PlatformUserID = 1
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if emitter == nil {
		emitter = events.NewLogEmitter()
	}
	return &service{store: store, cache: cache, config: config, emitter: emitter}
}

// RecordPerformance upserts today's performance row for the ad/channel
// pair. Inputs are cumulative day totals from the telemetry feed;
// revenue is computed from the delta against the stored counters and
// charged against the ad's budget, clamped so the spend never exceeds
// the daily cap. Excess delivery past the cap is discarded, not
// carried over.
func (s *service) RecordPerformance(ctx context.Context, adID, channelID uint, impressions, clicks int) error {
	if impressions < 0 || clicks < 0 {
		return ErrInvalidCounters
	}
	if clicks > impressions {
		return ErrClicksExceedViews
	}
	date := s.config.Now().UTC().Format("2006-01-02")

	return s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		ad, err := tx.Ads().GetByID(adID)
		if err != nil {
			return err
		}

		record, err := tx.Performance().GetByKey(adID, channelID, date)
		created := false
		if errors.Is(err, repositories.ErrPerformanceNotFound) {
			record = &models.PerformanceRecord{
				AdID:      adID,
				ChannelID: channelID,
				Date:      date,
			}
			created = true
		} else if err != nil {
			return err
		}

		impressionsDelta := impressions - record.Impressions
		clicksDelta := clicks - record.Clicks
		if impressionsDelta < 0 || clicksDelta < 0 {
			return ErrCounterRegression
		}

		var revenueDelta float64
		switch ad.BidType {
		case models.BidTypeCPM:
			revenueDelta = float64(impressionsDelta) / 1000 * ad.BidAmount
		default:
			revenueDelta = float64(clicksDelta) * ad.BidAmount
		}

		charged := revenueDelta
		if remaining := ad.BudgetRemaining(); charged > remaining {
			charged = remaining
		}

		record.Impressions = impressions
		record.Clicks = clicks
		record.CTR = 0
		if impressions > 0 {
			record.CTR = float64(clicks) / float64(impressions)
		}
		record.Revenue += charged
		record.Cost += charged
		record.ROI = 0
		if record.Cost > 0 {
			record.ROI = record.Revenue / record.Cost
		}
		if created {
			if err := tx.Performance().Create(record); err != nil {
				return err
			}
		} else if err := tx.Performance().Save(record); err != nil {
			return err
		}

		if charged > 0 {
			ad.SpentAmount += charged
			if ad.SpentAmount >= ad.DailyBudget {
				ad.SpentAmount = ad.DailyBudget
				ad.Status = models.AdStatusCompleted
			}
			if err := tx.Ads().Save(ad); err != nil {
				return err
			}
		}

		if err := s.trackDelivery(tx, adID, channelID, date, impressions, record.CTR); err != nil {
			return err
		}
		return nil
	})
}

// trackDelivery writes delivered impressions back onto the auction row
// and feeds observed CTR into the channel's quality score.
func (s *service) trackDelivery(tx repositories.Store, adID, channelID uint, date string, impressions int, ctr float64) error {
	auction, err := tx.Auctions().GetWinningAuction(adID, date)
	if err == nil && auction.ChannelID == channelID {
		auction.ActualImpressions = impressions
		if err := tx.Auctions().Save(auction); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, repositories.ErrAuctionNotFound) {
		return err
	}

	channel, err := tx.Channels().GetByID(channelID)
	if err != nil {
		return err
	}
	observed := 1.0 + ctr*10
	if observed > 2.0 {
		observed = 2.0
	}
	channel.QualityScore = (1-qualityFeedbackWeight)*channel.QualityScore + qualityFeedbackWeight*observed
	return tx.Channels().Save(channel)
}

// SettleDay credits channel owners and the platform for all revenue
// recorded on the date that has not been settled yet. Each row tracks
// how much of its revenue is already settled, so re-running a date is
// a no-op, and revenue recorded after an earlier settlement pass is
// picked up by the next one.
func (s *service) SettleDay(ctx context.Context, date string) error {
	records, err := s.store.Performance().ListUnsettledByDate(date)
	if err != nil {
		return err
	}

	var failures []error
	for _, record := range records {
		if err := s.settleRecord(ctx, record.AdID, record.ChannelID, date); err != nil {
			log.Printf("settlement failed for ad %d channel %d on %s: %v",
				record.AdID, record.ChannelID, date, err)
			failures = append(failures, fmt.Errorf("ad %d channel %d: %w", record.AdID, record.ChannelID, err))
		}
	}
	return errors.Join(failures...)
}

func (s *service) settleRecord(ctx context.Context, adID, channelID uint, date string) error {
	var ownerID uint
	var ownerShare, platformShare float64

	err := s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		record, err := tx.Performance().GetByKey(adID, channelID, date)
		if err != nil {
			return err
		}
		delta := record.UnsettledRevenue()
		if delta <= 0 {
			return nil
		}

		channel, err := tx.Channels().GetByID(channelID)
		if err != nil {
			return err
		}
		ownerID = channel.OwnerID

		// The platform share is computed as the remainder so the two
		// shares sum exactly to the settled revenue.
		ownerShare = delta * s.config.OwnerShare
		platformShare = delta - ownerShare

		if err := tx.Balances().Credit(ownerID, ownerShare); err != nil {
			return err
		}
		if err := tx.Balances().Credit(s.config.PlatformUserID, platformShare); err != nil {
			return err
		}

		record.SettledRevenue = record.Revenue
		return tx.Performance().Save(record)
	})
	if err != nil || ownerShare == 0 {
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateBalance(ctx, ownerID)
		s.cache.InvalidateBalance(ctx, s.config.PlatformUserID)
	}

	s.emitter.Emit(ctx, events.Event{
		Name: events.SettlementCompleted,
		Payload: map[string]interface{}{
			"ad_id":          adID,
			"channel_id":     channelID,
			"date":           date,
			"owner_id":       ownerID,
			"owner_share":    ownerShare,
			"platform_share": platformShare,
		},
	})
	return nil
}
