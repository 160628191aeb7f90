package repositories

import (
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by the given gorm database handle.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Ads() AdRepository                 { return NewAdRepository(s.db) }
func (s *gormStore) Channels() ChannelRepository       { return NewChannelRepository(s.db) }
func (s *gormStore) Auctions() AuctionRepository       { return NewAuctionRepository(s.db) }
func (s *gormStore) Performance() PerformanceRepository { return NewPerformanceRepository(s.db) }
func (s *gormStore) Balances() BalanceRepository       { return NewBalanceRepository(s.db) }
func (s *gormStore) JobRuns() JobRunRepository         { return NewJobRunRepository(s.db) }

func (s *gormStore) ExecuteInTransaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
