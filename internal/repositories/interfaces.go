// Package repositories provides the data access layer.
// It handles all database operations and data persistence logic.
package repositories

import (
	"errors"

	"adsettle/internal/models"
)

var (
	ErrAdNotFound          = errors.New("ad not found")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrPerformanceNotFound = errors.New("performance record not found")
	ErrBalanceNotFound     = errors.New("balance not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal request not found")
	ErrDuplicateAuction    = errors.New("auction already exists for channel and date")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrStaleStatus         = errors.New("status changed concurrently")
)

// AdRepository defines ad persistence operations.
type AdRepository interface {
	Create(ad *models.Ad) error
	GetByID(id uint) (*models.Ad, error)
	Save(ad *models.Ad) error
	// UpdateStatus moves the ad's status in a single guarded statement.
	// ErrStaleStatus means the ad is no longer in the from status.
	UpdateStatus(adID uint, from, to string) error
	ListByAdvertiser(advertiserID uint) ([]*models.Ad, error)
	// ListApprovedByCategory returns approved ads in the category that
	// still have budget left to spend.
	ListApprovedByCategory(category string) ([]*models.Ad, error)
}

// ChannelRepository defines channel persistence operations.
type ChannelRepository interface {
	Create(channel *models.Channel) error
	GetByID(id uint) (*models.Channel, error)
	Save(channel *models.Channel) error
	ListActive() ([]*models.Channel, error)
}

// AuctionRepository covers auctions and their per-candidate bid audit rows.
type AuctionRepository interface {
	Create(auction *models.Auction) error
	GetByID(id uint) (*models.Auction, error)
	GetByChannelAndDate(channelID uint, date string) (*models.Auction, error)
	Save(auction *models.Auction) error
	CreateBids(bids []*models.AuctionBid) error
	ListBidsByAuction(auctionID uint) ([]*models.AuctionBid, error)
	GetWinningAuction(adID uint, date string) (*models.Auction, error)
}

// PerformanceRepository defines performance-record persistence operations.
type PerformanceRepository interface {
	Create(record *models.PerformanceRecord) error
	GetByKey(adID, channelID uint, date string) (*models.PerformanceRecord, error)
	Save(record *models.PerformanceRecord) error
	ListUnsettledByDate(date string) ([]*models.PerformanceRecord, error)
	// HistoricalTotals returns lifetime impressions and clicks for an
	// ad on a channel, used for quality scoring.
	HistoricalTotals(adID, channelID uint) (impressions, clicks int, err error)
}

// BalanceRepository covers balances and withdrawal requests. Balance
// rows are never written whole: credits and debits are single guarded
// statements so concurrent settlement and payout cannot lose updates.
type BalanceRepository interface {
	GetByUserID(userID uint) (*models.Balance, error)
	// Credit atomically increases balance and total_earned, creating
	// the row on first credit.
	Credit(userID uint, amount float64) error
	// Debit atomically decreases balance and increases total_withdrawn,
	// guarded by sufficient funds. ErrInsufficientFunds means the guard
	// failed and nothing was written.
	Debit(userID uint, amount float64) error
	CreateWithdrawal(req *models.WithdrawalRequest) error
	GetWithdrawalByID(id uint) (*models.WithdrawalRequest, error)
	// TransitionWithdrawal writes the request's status, reference, and
	// processed-at in a single statement guarded by the from status.
	// ErrStaleStatus means another writer closed the request first.
	TransitionWithdrawal(req *models.WithdrawalRequest, from string) error
	ListWithdrawalsByUser(userID uint) ([]*models.WithdrawalRequest, error)
}

// JobRunRepository records executions of recurring jobs.
type JobRunRepository interface {
	Create(run *models.JobRun) error
	Save(run *models.JobRun) error
	ListRecent(limit int) ([]*models.JobRun, error)
}

// Store bundles the entity repositories behind one handle so services
// can run multi-entity mutations in a single storage transaction.
type Store interface {
	Ads() AdRepository
	Channels() ChannelRepository
	Auctions() AuctionRepository
	Performance() PerformanceRepository
	Balances() BalanceRepository
	JobRuns() JobRunRepository

	// ExecuteInTransaction runs fn against a Store whose repositories
	// share one database transaction. Partial writes are never visible.
	ExecuteInTransaction(fn func(Store) error) error
}
