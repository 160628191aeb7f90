package models

import (
	"time"
)

// Auction statuses
const (
	AuctionStatusScheduled = "scheduled"
	AuctionStatusRunning   = "running"
	AuctionStatusCompleted = "completed"
	AuctionStatusFailed    = "failed"
)

// Auction is one placement slot for a channel on a given date.
// The (channel_id, date) pair is the idempotency key: re-running a
// cycle for a date never creates a second auction for the same channel.
type Auction struct {
	ID                uint   `gorm:"primarykey"`
	Date              string `gorm:"not null;uniqueIndex:idx_auction_channel_date,priority:2"`
	ChannelID         uint   `gorm:"not null;uniqueIndex:idx_auction_channel_date,priority:1"`
	WinningAdID       *uint
	WinningBidAmount  float64
	EstimatedReach    int
	ActualImpressions int
	Status            string `gorm:"not null;default:'scheduled'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AuctionBid is the audit record for one candidate in one cycle.
// Rows are immutable once written, win or lose.
type AuctionBid struct {
	ID           uint    `gorm:"primarykey"`
	AuctionID    uint    `gorm:"not null;index"`
	AdID         uint    `gorm:"not null;index"`
	ChannelID    uint    `gorm:"not null"`
	BidAmount    float64 `gorm:"not null"`
	QualityScore float64 `gorm:"not null"`
	FinalScore   float64 `gorm:"not null"`
	Won          bool    `gorm:"default:false"`
	CreatedAt    time.Time
}
