package repositories

import (
	"fmt"

	"adsettle/internal/models"

	"gorm.io/gorm"
)

type adRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ad *models.Ad) error {
	if err := r.db.Create(ad).Error; err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}
	return nil
}

func (r *adRepository) GetByID(id uint) (*models.Ad, error) {
	var ad models.Ad
	if err := r.db.First(&ad, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return &ad, nil
}

func (r *adRepository) Save(ad *models.Ad) error {
	if err := r.db.Save(ad).Error; err != nil {
		return fmt.Errorf("failed to save ad: %w", err)
	}
	return nil
}

func (r *adRepository) UpdateStatus(adID uint, from, to string) error {
	res := r.db.Model(&models.Ad{}).
		Where("id = ? AND status = ?", adID, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update ad status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *adRepository) ListByAdvertiser(advertiserID uint) ([]*models.Ad, error) {
	var ads []*models.Ad
	err := r.db.Where("advertiser_id = ?", advertiserID).
		Order("created_at DESC").
		Find(&ads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return ads, nil
}

func (r *adRepository) ListApprovedByCategory(category string) ([]*models.Ad, error) {
	var ads []*models.Ad
	err := r.db.Where("category = ? AND status = ? AND spent_amount < daily_budget",
		category, models.AdStatusApproved).
		Order("created_at ASC").
		Find(&ads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate ads: %w", err)
	}
	return ads, nil
}
