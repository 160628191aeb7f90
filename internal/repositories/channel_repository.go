package repositories

import (
	"fmt"

	"adsettle/internal/models"

	"gorm.io/gorm"
)

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) Create(channel *models.Channel) error {
	if err := r.db.Create(channel).Error; err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

func (r *channelRepository) GetByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &channel, nil
}

func (r *channelRepository) Save(channel *models.Channel) error {
	if err := r.db.Save(channel).Error; err != nil {
		return fmt.Errorf("failed to save channel: %w", err)
	}
	return nil
}

func (r *channelRepository) ListActive() ([]*models.Channel, error) {
	var channels []*models.Channel
	err := r.db.Where("active = ?", true).
		Order("id ASC").
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active channels: %w", err)
	}
	return channels, nil
}
