package repositories

import (
	"errors"
	"fmt"

	"adsettle/internal/models"

	"gorm.io/gorm"
)

type auctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) Create(auction *models.Auction) error {
	if err := r.db.Create(auction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAuction
		}
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

func (r *auctionRepository) GetByID(id uint) (*models.Auction, error) {
	var auction models.Auction
	if err := r.db.First(&auction, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return &auction, nil
}

func (r *auctionRepository) GetByChannelAndDate(channelID uint, date string) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.Where("channel_id = ? AND date = ?", channelID, date).
		First(&auction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return &auction, nil
}

func (r *auctionRepository) Save(auction *models.Auction) error {
	if err := r.db.Save(auction).Error; err != nil {
		return fmt.Errorf("failed to save auction: %w", err)
	}
	return nil
}

func (r *auctionRepository) CreateBids(bids []*models.AuctionBid) error {
	if len(bids) == 0 {
		return nil
	}
	if err := r.db.Create(bids).Error; err != nil {
		return fmt.Errorf("failed to create auction bids: %w", err)
	}
	return nil
}

func (r *auctionRepository) ListBidsByAuction(auctionID uint) ([]*models.AuctionBid, error) {
	var bids []*models.AuctionBid
	err := r.db.Where("auction_id = ?", auctionID).
		Order("final_score DESC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list auction bids: %w", err)
	}
	return bids, nil
}

func (r *auctionRepository) GetWinningAuction(adID uint, date string) (*models.Auction, error) {
	var auction models.Auction
	err := r.db.Where("winning_ad_id = ? AND date = ?", adID, date).
		First(&auction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get winning auction: %w", err)
	}
	return &auction, nil
}
