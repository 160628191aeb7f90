package repositories

import (
	"fmt"

	"adsettle/internal/models"

	"gorm.io/gorm"
)

type jobRunRepository struct {
	db *gorm.DB
}

func NewJobRunRepository(db *gorm.DB) JobRunRepository {
	return &jobRunRepository{db: db}
}

func (r *jobRunRepository) Create(run *models.JobRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create job run: %w", err)
	}
	return nil
}

func (r *jobRunRepository) Save(run *models.JobRun) error {
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("failed to save job run: %w", err)
	}
	return nil
}

func (r *jobRunRepository) ListRecent(limit int) ([]*models.JobRun, error) {
	var runs []*models.JobRun
	err := r.db.Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list job runs: %w", err)
	}
	return runs, nil
}
