package models

import (
	"time"
)

// PerformanceRecord accumulates delivery metrics for one ad on one
// channel for one date. Impressions and clicks are cumulative day
// totals and only ever increase. SettledRevenue tracks how much of
// Revenue has already been split and credited, which makes nightly
// settlement safe to re-run.
type PerformanceRecord struct {
	ID             uint   `gorm:"primarykey"`
	AdID           uint   `gorm:"not null;uniqueIndex:idx_perf_ad_channel_date,priority:1"`
	ChannelID      uint   `gorm:"not null;uniqueIndex:idx_perf_ad_channel_date,priority:2"`
	Date           string `gorm:"not null;uniqueIndex:idx_perf_ad_channel_date,priority:3;index"`
	Impressions    int    `gorm:"default:0"`
	Clicks         int    `gorm:"default:0"`
	CTR            float64 `gorm:"default:0"`
	Revenue        float64 `gorm:"default:0"`
	Cost           float64 `gorm:"default:0"`
	ROI            float64 `gorm:"default:0"`
	SettledRevenue float64 `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UnsettledRevenue is the portion of revenue not yet credited to balances.
func (p *PerformanceRecord) UnsettledRevenue() float64 {
	delta := p.Revenue - p.SettledRevenue
	if delta < 0 {
		return 0
	}
	return delta
}
