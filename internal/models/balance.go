package models

import (
	"time"
)

// Balance is the single withdrawable-funds row per user. It is only
// increased by settlement credits and only decreased when a withdrawal
// request is marked paid.
type Balance struct {
	ID             uint    `gorm:"primarykey"`
	UserID         uint    `gorm:"uniqueIndex;not null"`
	Balance        float64 `gorm:"default:0"`
	TotalEarned    float64 `gorm:"default:0"`
	TotalWithdrawn float64 `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
