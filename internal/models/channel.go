package models

import (
	"time"
)

// Channel is a publisher channel that sells ad placements.
// Channels are never deleted; inactive channels are excluded
// from auction matching.
type Channel struct {
	ID              uint    `gorm:"primarykey"`
	OwnerID         uint    `gorm:"not null;index"`
	Category        string  `gorm:"not null;index"`
	SubscriberCount int     `gorm:"not null;default:0"`
	QualityScore    float64 `gorm:"default:1.0"`
	MinCPC          float64 `gorm:"default:0"`
	MinCPM          float64 `gorm:"default:0"`
	Active          bool    `gorm:"default:true;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
