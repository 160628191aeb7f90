// Package auction matches active channels to the highest-scoring
// eligible ad once per day. The (channel, date) pair is the
// idempotency key: re-running a cycle for a date that already has
// auction rows is a no-op for those channels.
package auction

import (
	"context"
	"errors"
	"log"
	"sort"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/services/events"
)

// Service runs the periodic auction cycle.
type Service interface {
	RunCycle(ctx context.Context, date string) ([]Result, error)
}

type service struct {
	store   repositories.Store
	config  Config
	emitter events.Emitter
}

func NewService(store repositories.Store, config Config, emitter events.Emitter) Service {
	if store == nil {
		panic("store is required")
	}
	if config.ReachFactor <= 0 {
		config.ReachFactor = 0.35
	}
	if emitter == nil {
		emitter = events.NewLogEmitter()
	}
	return &service{store: store, config: config, emitter: emitter}
}

// RunCycle auctions every active channel for the given date. Each
// channel is an independent unit of work: a failure is recorded in its
// Result and never aborts the rest of the cycle.
func (s *service) RunCycle(ctx context.Context, date string) ([]Result, error) {
	channels, err := s.store.Channels().ListActive()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(channels))
	for _, channel := range channels {
		result := s.auctionChannel(ctx, channel, date)
		if result.Err != nil {
			// One retry for transient storage failures, then record
			// the failure and move on.
			result = s.auctionChannel(ctx, channel, date)
		}
		if result.Err != nil {
			log.Printf("auction failed for channel %d on %s: %v", channel.ID, date, result.Err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) auctionChannel(ctx context.Context, channel *models.Channel, date string) Result {
	result := Result{ChannelID: channel.ID}

	if existing, err := s.store.Auctions().GetByChannelAndDate(channel.ID, date); err == nil {
		result.AuctionID = existing.ID
		result.Skipped = true
		return result
	} else if !errors.Is(err, repositories.ErrAuctionNotFound) {
		result.Err = err
		return result
	}

	candidates, err := s.store.Ads().ListApprovedByCategory(channel.Category)
	if err != nil {
		result.Err = err
		return result
	}
	scored := s.scoreCandidates(channel, candidates)
	if len(scored) == 0 {
		// No match is a normal outcome; no auction row is written.
		result.Skipped = true
		return result
	}

	rankCandidates(scored)
	winner := scored[0]

	auction := &models.Auction{
		Date:             date,
		ChannelID:        channel.ID,
		WinningAdID:      &winner.adID,
		WinningBidAmount: winner.bidAmount,
		EstimatedReach:   int(float64(channel.SubscriberCount) * s.config.ReachFactor),
		Status:           models.AuctionStatusCompleted,
	}

	err = s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		// Re-check under the transaction in case a concurrent cycle
		// claimed the slot since the read above.
		if _, err := tx.Auctions().GetByChannelAndDate(channel.ID, date); err == nil {
			return repositories.ErrDuplicateAuction
		} else if !errors.Is(err, repositories.ErrAuctionNotFound) {
			return err
		}

		if err := tx.Auctions().Create(auction); err != nil {
			return err
		}
		bids := make([]*models.AuctionBid, 0, len(scored))
		for _, c := range scored {
			bids = append(bids, &models.AuctionBid{
				AuctionID:    auction.ID,
				AdID:         c.adID,
				ChannelID:    channel.ID,
				BidAmount:    c.bidAmount,
				QualityScore: c.qualityScore,
				FinalScore:   c.finalScore,
				Won:          c.adID == winner.adID,
			})
		}
		return tx.Auctions().CreateBids(bids)
	})
	if errors.Is(err, repositories.ErrDuplicateAuction) {
		result.Skipped = true
		return result
	}
	if err != nil {
		result.Err = err
		return result
	}

	result.AuctionID = auction.ID
	result.WinningAdID = winner.adID
	result.WinningBid = winner.bidAmount

	s.emitter.Emit(ctx, events.Event{
		Name: events.AdWonAuction,
		Payload: map[string]interface{}{
			"auction_id": auction.ID,
			"channel_id": channel.ID,
			"ad_id":      winner.adID,
			"date":       date,
			"reach":      auction.EstimatedReach,
		},
	})
	return result
}

// scoreCandidates filters candidates against the channel's bid floors
// and computes quality-adjusted scores.
func (s *service) scoreCandidates(channel *models.Channel, candidates []*models.Ad) []scoredCandidate {
	scored := make([]scoredCandidate, 0, len(candidates))
	for _, ad := range candidates {
		switch ad.BidType {
		case models.BidTypeCPC:
			if ad.BidAmount < channel.MinCPC {
				continue
			}
		case models.BidTypeCPM:
			if ad.BidAmount < channel.MinCPM {
				continue
			}
		default:
			continue
		}

		impressions, clicks, err := s.store.Performance().HistoricalTotals(ad.ID, channel.ID)
		if err != nil {
			// Missing history degrades to the neutral quality score
			// rather than failing the channel.
			impressions, clicks = 0, 0
		}
		quality := qualityScore(impressions, clicks)
		scored = append(scored, scoredCandidate{
			adID:         ad.ID,
			bidAmount:    ad.BidAmount,
			qualityScore: quality,
			finalScore:   ad.BidAmount * quality,
			createdAtNs:  ad.CreatedAt.UnixNano(),
		})
	}
	return scored
}

// qualityScore maps an ad's historical CTR on a channel into the
// 1.0–2.0 multiplier range. Ads with no delivery history score the
// neutral 1.0.
func qualityScore(impressions, clicks int) float64 {
	if impressions <= 0 {
		return 1.0
	}
	ctr := float64(clicks) / float64(impressions)
	boost := ctr * 10
	if boost > 0.5 {
		boost = 0.5
	}
	score := 1.0 + boost
	if score > 2.0 {
		score = 2.0
	}
	return score
}

// rankCandidates orders candidates best-first. Ties on final score
// break deterministically: highest raw bid, then earliest creation
// time, then lowest ad id.
func rankCandidates(scored []scoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].finalScore != scored[j].finalScore {
			return scored[i].finalScore > scored[j].finalScore
		}
		if scored[i].bidAmount != scored[j].bidAmount {
			return scored[i].bidAmount > scored[j].bidAmount
		}
		if scored[i].createdAtNs != scored[j].createdAtNs {
			return scored[i].createdAtNs < scored[j].createdAtNs
		}
		return scored[i].adID < scored[j].adID
	})
}
