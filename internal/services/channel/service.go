// Package channel manages publisher channel registration. Channels
// are never deleted, only deactivated, so historical auctions keep a
// valid owner to settle against.
package channel

import (
	"context"
	"errors"
	"strings"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/repositories/cache"
)

var (
	ErrInvalidCategory    = errors.New("category is required")
	ErrInvalidSubscribers = errors.New("subscriber count must be positive")
)

type Service interface {
	Register(ctx context.Context, ownerID uint, category string, subscriberCount int, minCPC, minCPM float64) (*models.Channel, error)
	Deactivate(ctx context.Context, channelID uint) error
	Get(ctx context.Context, channelID uint) (*models.Channel, error)
	ListActive(ctx context.Context) ([]*models.Channel, error)
}

type service struct {
	store repositories.Store
	cache *cache.CacheService
}

func NewService(store repositories.Store, cacheService *cache.CacheService) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, cache: cacheService}
}

func (s *service) Register(ctx context.Context, ownerID uint, category string, subscriberCount int, minCPC, minCPM float64) (*models.Channel, error) {
	if strings.TrimSpace(category) == "" {
		return nil, ErrInvalidCategory
	}
	if subscriberCount <= 0 {
		return nil, ErrInvalidSubscribers
	}

	channel := &models.Channel{
		OwnerID:         ownerID,
		Category:        category,
		SubscriberCount: subscriberCount,
		QualityScore:    1.0,
		MinCPC:          minCPC,
		MinCPM:          minCPM,
		Active:          true,
	}
	if err := s.store.Channels().Create(channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *service) Deactivate(ctx context.Context, channelID uint) error {
	channel, err := s.store.Channels().GetByID(channelID)
	if err != nil {
		return err
	}
	if !channel.Active {
		return nil
	}
	channel.Active = false
	if err := s.store.Channels().Save(channel); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateChannel(ctx, channelID)
	}
	return nil
}

func (s *service) Get(ctx context.Context, channelID uint) (*models.Channel, error) {
	if s.cache != nil {
		if channel, ok := s.cache.GetChannel(ctx, channelID); ok {
			return channel, nil
		}
	}
	channel, err := s.store.Channels().GetByID(channelID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.CacheChannel(ctx, channel)
	}
	return channel, nil
}

func (s *service) ListActive(ctx context.Context) ([]*models.Channel, error) {
	return s.store.Channels().ListActive()
}
