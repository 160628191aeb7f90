package repositories

import (
	"fmt"

	"adsettle/internal/models"

	"gorm.io/gorm"
)

type performanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

func (r *performanceRepository) Create(record *models.PerformanceRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create performance record: %w", err)
	}
	return nil
}

func (r *performanceRepository) GetByKey(adID, channelID uint, date string) (*models.PerformanceRecord, error) {
	var record models.PerformanceRecord
	err := r.db.Where("ad_id = ? AND channel_id = ? AND date = ?", adID, channelID, date).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPerformanceNotFound
		}
		return nil, fmt.Errorf("failed to get performance record: %w", err)
	}
	return &record, nil
}

func (r *performanceRepository) Save(record *models.PerformanceRecord) error {
	if err := r.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to save performance record: %w", err)
	}
	return nil
}

func (r *performanceRepository) ListUnsettledByDate(date string) ([]*models.PerformanceRecord, error) {
	var records []*models.PerformanceRecord
	err := r.db.Where("date = ? AND revenue > settled_revenue", date).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled records: %w", err)
	}
	return records, nil
}

func (r *performanceRepository) HistoricalTotals(adID, channelID uint) (int, int, error) {
	var totals struct {
		Impressions int
		Clicks      int
	}
	err := r.db.Model(&models.PerformanceRecord{}).
		Where("ad_id = ? AND channel_id = ?", adID, channelID).
		Select("COALESCE(SUM(impressions), 0) AS impressions, COALESCE(SUM(clicks), 0) AS clicks").
		Scan(&totals).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get historical totals: %w", err)
	}
	return totals.Impressions, totals.Clicks, nil
}
