// Package memory provides an in-memory Store used by service tests.
// It mirrors the behavior of the gorm-backed repositories, including
// sentinel errors and detached row copies, without a database.
package memory

import (
	"sort"
	"sync"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
)

// Store is a mutex-protected map-backed repositories.Store.
// The Fail* fields inject storage errors for failure-path tests.
type Store struct {
	mu sync.Mutex

	ads         map[uint]*models.Ad
	channels    map[uint]*models.Channel
	auctions    map[uint]*models.Auction
	bids        map[uint]*models.AuctionBid
	performance map[uint]*models.PerformanceRecord
	balances    map[uint]*models.Balance
	withdrawals map[uint]*models.WithdrawalRequest
	jobRuns     map[uint]*models.JobRun
	nextID      uint

	// FailCreateAuction holds per-channel counts of injected failures
	// for auction creation.
	FailCreateAuction map[uint]int
	// FailJobRuns makes job-run persistence fail when set.
	FailJobRuns bool
}

func NewStore() *Store {
	return &Store{
		ads:               make(map[uint]*models.Ad),
		channels:          make(map[uint]*models.Channel),
		auctions:          make(map[uint]*models.Auction),
		bids:              make(map[uint]*models.AuctionBid),
		performance:       make(map[uint]*models.PerformanceRecord),
		balances:          make(map[uint]*models.Balance),
		withdrawals:       make(map[uint]*models.WithdrawalRequest),
		jobRuns:           make(map[uint]*models.JobRun),
		FailCreateAuction: make(map[uint]int),
	}
}

func (s *Store) nextSequence() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Ads() repositories.AdRepository                  { return adRepo{s} }
func (s *Store) Channels() repositories.ChannelRepository        { return channelRepo{s} }
func (s *Store) Auctions() repositories.AuctionRepository        { return auctionRepo{s} }
func (s *Store) Performance() repositories.PerformanceRepository { return performanceRepo{s} }
func (s *Store) Balances() repositories.BalanceRepository        { return balanceRepo{s} }
func (s *Store) JobRuns() repositories.JobRunRepository          { return jobRunRepo{s} }

// ExecuteInTransaction runs fn against the same store. Rollback is
// not simulated; tests exercising transactional behavior assert on
// the error paths instead.
func (s *Store) ExecuteInTransaction(fn func(repositories.Store) error) error {
	return fn(s)
}

// --- ads ---

type adRepo struct{ s *Store }

func (r adRepo) Create(ad *models.Ad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ad.ID = r.s.nextSequence()
	clone := *ad
	r.s.ads[ad.ID] = &clone
	return nil
}

func (r adRepo) GetByID(id uint) (*models.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ad, ok := r.s.ads[id]
	if !ok {
		return nil, repositories.ErrAdNotFound
	}
	clone := *ad
	return &clone, nil
}

func (r adRepo) Save(ad *models.Ad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ads[ad.ID]; !ok {
		return repositories.ErrAdNotFound
	}
	clone := *ad
	r.s.ads[ad.ID] = &clone
	return nil
}

func (r adRepo) UpdateStatus(adID uint, from, to string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ad, ok := r.s.ads[adID]
	if !ok || ad.Status != from {
		return repositories.ErrStaleStatus
	}
	ad.Status = to
	return nil
}

func (r adRepo) ListByAdvertiser(advertiserID uint) ([]*models.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ads []*models.Ad
	for _, ad := range r.s.ads {
		if ad.AdvertiserID == advertiserID {
			clone := *ad
			ads = append(ads, &clone)
		}
	}
	sortByID(ads, func(a *models.Ad) uint { return a.ID })
	return ads, nil
}

func (r adRepo) ListApprovedByCategory(category string) ([]*models.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ads []*models.Ad
	for _, ad := range r.s.ads {
		if ad.Category == category && ad.Status == models.AdStatusApproved && ad.SpentAmount < ad.DailyBudget {
			clone := *ad
			ads = append(ads, &clone)
		}
	}
	sortByID(ads, func(a *models.Ad) uint { return a.ID })
	return ads, nil
}

// --- channels ---

type channelRepo struct{ s *Store }

func (r channelRepo) Create(channel *models.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	channel.ID = r.s.nextSequence()
	clone := *channel
	r.s.channels[channel.ID] = &clone
	return nil
}

func (r channelRepo) GetByID(id uint) (*models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	channel, ok := r.s.channels[id]
	if !ok {
		return nil, repositories.ErrChannelNotFound
	}
	clone := *channel
	return &clone, nil
}

func (r channelRepo) Save(channel *models.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.channels[channel.ID]; !ok {
		return repositories.ErrChannelNotFound
	}
	clone := *channel
	r.s.channels[channel.ID] = &clone
	return nil
}

func (r channelRepo) ListActive() ([]*models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var channels []*models.Channel
	for _, channel := range r.s.channels {
		if channel.Active {
			clone := *channel
			channels = append(channels, &clone)
		}
	}
	sortByID(channels, func(c *models.Channel) uint { return c.ID })
	return channels, nil
}

// --- auctions ---

type auctionRepo struct{ s *Store }

func (r auctionRepo) Create(auction *models.Auction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if remaining := r.s.FailCreateAuction[auction.ChannelID]; remaining > 0 {
		r.s.FailCreateAuction[auction.ChannelID] = remaining - 1
		return errInjected
	}
	for _, existing := range r.s.auctions {
		if existing.ChannelID == auction.ChannelID && existing.Date == auction.Date {
			return repositories.ErrDuplicateAuction
		}
	}
	auction.ID = r.s.nextSequence()
	clone := *auction
	r.s.auctions[auction.ID] = &clone
	return nil
}

func (r auctionRepo) GetByID(id uint) (*models.Auction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	auction, ok := r.s.auctions[id]
	if !ok {
		return nil, repositories.ErrAuctionNotFound
	}
	clone := *auction
	return &clone, nil
}

func (r auctionRepo) GetByChannelAndDate(channelID uint, date string) (*models.Auction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, auction := range r.s.auctions {
		if auction.ChannelID == channelID && auction.Date == date {
			clone := *auction
			return &clone, nil
		}
	}
	return nil, repositories.ErrAuctionNotFound
}

func (r auctionRepo) Save(auction *models.Auction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.auctions[auction.ID]; !ok {
		return repositories.ErrAuctionNotFound
	}
	clone := *auction
	r.s.auctions[auction.ID] = &clone
	return nil
}

func (r auctionRepo) CreateBids(bids []*models.AuctionBid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, bid := range bids {
		bid.ID = r.s.nextSequence()
		clone := *bid
		r.s.bids[bid.ID] = &clone
	}
	return nil
}

func (r auctionRepo) ListBidsByAuction(auctionID uint) ([]*models.AuctionBid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var bids []*models.AuctionBid
	for _, bid := range r.s.bids {
		if bid.AuctionID == auctionID {
			clone := *bid
			bids = append(bids, &clone)
		}
	}
	sortByID(bids, func(b *models.AuctionBid) uint { return b.ID })
	return bids, nil
}

func (r auctionRepo) GetWinningAuction(adID uint, date string) (*models.Auction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, auction := range r.s.auctions {
		if auction.Date == date && auction.WinningAdID != nil && *auction.WinningAdID == adID {
			clone := *auction
			return &clone, nil
		}
	}
	return nil, repositories.ErrAuctionNotFound
}

// --- performance ---

type performanceRepo struct{ s *Store }

func (r performanceRepo) Create(record *models.PerformanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record.ID = r.s.nextSequence()
	clone := *record
	r.s.performance[record.ID] = &clone
	return nil
}

func (r performanceRepo) GetByKey(adID, channelID uint, date string) (*models.PerformanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, record := range r.s.performance {
		if record.AdID == adID && record.ChannelID == channelID && record.Date == date {
			clone := *record
			return &clone, nil
		}
	}
	return nil, repositories.ErrPerformanceNotFound
}

func (r performanceRepo) Save(record *models.PerformanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.performance[record.ID]; !ok {
		return repositories.ErrPerformanceNotFound
	}
	clone := *record
	r.s.performance[record.ID] = &clone
	return nil
}

func (r performanceRepo) ListUnsettledByDate(date string) ([]*models.PerformanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var records []*models.PerformanceRecord
	for _, record := range r.s.performance {
		if record.Date == date && record.Revenue > record.SettledRevenue {
			clone := *record
			records = append(records, &clone)
		}
	}
	sortByID(records, func(p *models.PerformanceRecord) uint { return p.ID })
	return records, nil
}

func (r performanceRepo) HistoricalTotals(adID, channelID uint) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var impressions, clicks int
	for _, record := range r.s.performance {
		if record.AdID == adID && record.ChannelID == channelID {
			impressions += record.Impressions
			clicks += record.Clicks
		}
	}
	return impressions, clicks, nil
}

// --- balances ---

type balanceRepo struct{ s *Store }

func (r balanceRepo) GetByUserID(userID uint) (*models.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[userID]
	if !ok {
		return nil, repositories.ErrBalanceNotFound
	}
	clone := *balance
	return &clone, nil
}

func (r balanceRepo) Credit(userID uint, amount float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[userID]
	if !ok {
		balance = &models.Balance{ID: r.s.nextSequence(), UserID: userID}
		r.s.balances[userID] = balance
	}
	balance.Balance += amount
	balance.TotalEarned += amount
	return nil
}

func (r balanceRepo) Debit(userID uint, amount float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[userID]
	if !ok || balance.Balance < amount {
		return repositories.ErrInsufficientFunds
	}
	balance.Balance -= amount
	balance.TotalWithdrawn += amount
	return nil
}

func (r balanceRepo) CreateWithdrawal(req *models.WithdrawalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = r.s.nextSequence()
	clone := *req
	r.s.withdrawals[req.ID] = &clone
	return nil
}

func (r balanceRepo) GetWithdrawalByID(id uint) (*models.WithdrawalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.withdrawals[id]
	if !ok {
		return nil, repositories.ErrWithdrawalNotFound
	}
	clone := *req
	return &clone, nil
}

func (r balanceRepo) TransitionWithdrawal(req *models.WithdrawalRequest, from string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.withdrawals[req.ID]
	if !ok || stored.Status != from {
		return repositories.ErrStaleStatus
	}
	stored.Status = req.Status
	stored.Reference = req.Reference
	stored.ProcessedAt = req.ProcessedAt
	return nil
}

func (r balanceRepo) ListWithdrawalsByUser(userID uint) ([]*models.WithdrawalRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var reqs []*models.WithdrawalRequest
	for _, req := range r.s.withdrawals {
		if req.UserID == userID {
			clone := *req
			reqs = append(reqs, &clone)
		}
	}
	sortByID(reqs, func(w *models.WithdrawalRequest) uint { return w.ID })
	return reqs, nil
}

// --- job runs ---

type jobRunRepo struct{ s *Store }

func (r jobRunRepo) Create(run *models.JobRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailJobRuns {
		return errInjected
	}
	run.ID = r.s.nextSequence()
	clone := *run
	r.s.jobRuns[run.ID] = &clone
	return nil
}

func (r jobRunRepo) Save(run *models.JobRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailJobRuns {
		return errInjected
	}
	if _, ok := r.s.jobRuns[run.ID]; !ok {
		return errInjected
	}
	clone := *run
	r.s.jobRuns[run.ID] = &clone
	return nil
}

func (r jobRunRepo) ListRecent(limit int) ([]*models.JobRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var runs []*models.JobRun
	for _, run := range r.s.jobRuns {
		clone := *run
		runs = append(runs, &clone)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func sortByID[T any](items []*T, id func(*T) uint) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
