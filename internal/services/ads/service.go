// Package ads validates and stores advertiser bids. Submitted ads
// start pending and wait for the external moderation collaborator to
// approve or reject them.
package ads

import (
	"context"
	"errors"
	"strings"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/services/events"
)

// Service is the bid intake surface.
type Service interface {
	Submit(ctx context.Context, input SubmitAdInput) (*models.Ad, error)
	SetStatus(ctx context.Context, adID uint, status string) (*models.Ad, error)
	Get(ctx context.Context, adID uint) (*models.Ad, error)
	ListByAdvertiser(ctx context.Context, advertiserID uint) ([]*models.Ad, error)
}

type service struct {
	store   repositories.Store
	config  Config
	emitter events.Emitter
}

// NewService creates the ad service. Zero config fields fall back to
// the default bid floors.
func NewService(store repositories.Store, config Config, emitter events.Emitter) Service {
	if store == nil {
		panic("store is required")
	}
	if config.MinCPCBid <= 0 {
		config.MinCPCBid = 0.05
	}
	if config.MinCPMBid <= 0 {
		config.MinCPMBid = 0.50
	}
	if emitter == nil {
		emitter = events.NewLogEmitter()
	}
	return &service{store: store, config: config, emitter: emitter}
}

func (s *service) Submit(ctx context.Context, input SubmitAdInput) (*models.Ad, error) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, ErrInvalidCategory
	}
	if strings.TrimSpace(input.ContentRef) == "" {
		return nil, ErrInvalidContent
	}

	var floor float64
	switch input.BidType {
	case models.BidTypeCPC:
		floor = s.config.MinCPCBid
	case models.BidTypeCPM:
		floor = s.config.MinCPMBid
	default:
		return nil, ErrInvalidBidType
	}
	if input.BidAmount < floor {
		return nil, ErrBidTooLow
	}
	if input.DailyBudget < input.BidAmount {
		return nil, ErrBudgetInvalid
	}

	ad := &models.Ad{
		AdvertiserID: input.AdvertiserID,
		ContentRef:   input.ContentRef,
		Category:     input.Category,
		BidType:      input.BidType,
		BidAmount:    input.BidAmount,
		DailyBudget:  input.DailyBudget,
		Status:       models.AdStatusPending,
	}
	if err := s.store.Ads().Create(ad); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.Event{
		Name: events.AdSubmitted,
		Payload: map[string]interface{}{
			"ad_id":         ad.ID,
			"advertiser_id": ad.AdvertiserID,
			"category":      ad.Category,
		},
	})
	return ad, nil
}

// adTransitions lists the allowed status moves. Approval and rejection
// come from the moderation collaborator; pausing from the advertiser;
// completion from the settler when the budget is exhausted.
var adTransitions = map[string][]string{
	models.AdStatusDraft:    {models.AdStatusPending},
	models.AdStatusPending:  {models.AdStatusApproved, models.AdStatusRejected},
	models.AdStatusApproved: {models.AdStatusActive, models.AdStatusPaused, models.AdStatusCompleted},
	models.AdStatusActive:   {models.AdStatusPaused, models.AdStatusCompleted},
	models.AdStatusPaused:   {models.AdStatusApproved, models.AdStatusActive},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range adTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *service) SetStatus(ctx context.Context, adID uint, status string) (*models.Ad, error) {
	ad, err := s.store.Ads().GetByID(adID)
	if err != nil {
		return nil, err
	}
	if ad.Status == status {
		return ad, nil
	}
	if !transitionAllowed(ad.Status, status) {
		return nil, ErrInvalidTransition
	}
	// Only the status column is written, guarded by the status the
	// transition was validated against, so a settler charging the ad
	// in the same window is never overwritten and a stale transition
	// never applies.
	if err := s.store.Ads().UpdateStatus(adID, ad.Status, status); err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	ad.Status = status
	return ad, nil
}

func (s *service) Get(ctx context.Context, adID uint) (*models.Ad, error) {
	return s.store.Ads().GetByID(adID)
}

func (s *service) ListByAdvertiser(ctx context.Context, advertiserID uint) ([]*models.Ad, error) {
	return s.store.Ads().ListByAdvertiser(advertiserID)
}
