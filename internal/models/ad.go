package models

import (
	"time"
)

// Bid pricing models
const (
	BidTypeCPC = "CPC"
	BidTypeCPM = "CPM"
)

// Ad statuses
const (
	AdStatusDraft     = "draft"
	AdStatusPending   = "pending"
	AdStatusApproved  = "approved"
	AdStatusRejected  = "rejected"
	AdStatusActive    = "active"
	AdStatusPaused    = "paused"
	AdStatusCompleted = "completed"
)

// Ad is an advertiser's bid for placement. It is created pending,
// approved or rejected by the external moderation collaborator, and
// completed once its daily budget is spent.
type Ad struct {
	ID           uint    `gorm:"primarykey"`
	AdvertiserID uint    `gorm:"not null;index"`
	ContentRef   string  `gorm:"not null"`
	Category     string  `gorm:"not null;index"`
	BidType      string  `gorm:"not null"`
	BidAmount    float64 `gorm:"not null"`
	DailyBudget  float64 `gorm:"not null"`
	SpentAmount  float64 `gorm:"default:0"`
	Status       string  `gorm:"not null;default:'pending';index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BudgetRemaining returns how much of the daily budget is still spendable.
func (a *Ad) BudgetRemaining() float64 {
	remaining := a.DailyBudget - a.SpentAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}
