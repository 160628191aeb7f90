package ads

import (
	"context"
	"testing"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *memory.Store) Service {
	return NewService(store, Config{MinCPCBid: 0.10, MinCPMBid: 1.00}, nil)
}

func validInput() SubmitAdInput {
	return SubmitAdInput{
		AdvertiserID: 42,
		Category:     "tech",
		BidType:      models.BidTypeCPC,
		BidAmount:    0.25,
		DailyBudget:  10,
		ContentRef:   "post:123",
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SubmitAdInput)
		wantErr error
	}{
		{
			name:   "valid CPC at floor",
			mutate: func(in *SubmitAdInput) { in.BidAmount = 0.10 },
		},
		{
			name: "valid CPM at floor",
			mutate: func(in *SubmitAdInput) {
				in.BidType = models.BidTypeCPM
				in.BidAmount = 1.00
				in.DailyBudget = 20
			},
		},
		{
			name:    "CPC below floor",
			mutate:  func(in *SubmitAdInput) { in.BidAmount = 0.09 },
			wantErr: ErrBidTooLow,
		},
		{
			name: "CPM below floor",
			mutate: func(in *SubmitAdInput) {
				in.BidType = models.BidTypeCPM
				in.BidAmount = 0.99
			},
			wantErr: ErrBidTooLow,
		},
		{
			name:    "budget below bid",
			mutate:  func(in *SubmitAdInput) { in.BidAmount = 5; in.DailyBudget = 4 },
			wantErr: ErrBudgetInvalid,
		},
		{
			name:    "unknown bid type",
			mutate:  func(in *SubmitAdInput) { in.BidType = "CPA" },
			wantErr: ErrInvalidBidType,
		},
		{
			name:    "missing category",
			mutate:  func(in *SubmitAdInput) { in.Category = "  " },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "missing content ref",
			mutate:  func(in *SubmitAdInput) { in.ContentRef = "" },
			wantErr: ErrInvalidContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(memory.NewStore())
			input := validInput()
			tt.mutate(&input)

			ad, err := svc.Submit(context.Background(), input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ad)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, ad.ID)
			assert.Equal(t, models.AdStatusPending, ad.Status)
		})
	}
}

func TestSubmit_PersistsPendingAd(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	ad, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)

	stored, err := store.Ads().GetByID(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(42), stored.AdvertiserID)
	assert.Equal(t, models.AdStatusPending, stored.Status)
	assert.Equal(t, 0.25, stored.BidAmount)
	assert.Zero(t, stored.SpentAmount)
}

func TestSetStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{name: "pending to approved", from: models.AdStatusPending, to: models.AdStatusApproved},
		{name: "pending to rejected", from: models.AdStatusPending, to: models.AdStatusRejected},
		{name: "approved to paused", from: models.AdStatusApproved, to: models.AdStatusPaused},
		{name: "paused to approved", from: models.AdStatusPaused, to: models.AdStatusApproved},
		{name: "approved to completed", from: models.AdStatusApproved, to: models.AdStatusCompleted},
		{name: "same status is a no-op", from: models.AdStatusApproved, to: models.AdStatusApproved},
		{name: "pending cannot complete", from: models.AdStatusPending, to: models.AdStatusCompleted, wantErr: ErrInvalidTransition},
		{name: "rejected is terminal", from: models.AdStatusRejected, to: models.AdStatusApproved, wantErr: ErrInvalidTransition},
		{name: "completed is terminal", from: models.AdStatusCompleted, to: models.AdStatusApproved, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			svc := newTestService(store)

			seed := &models.Ad{
				AdvertiserID: 1,
				Category:     "tech",
				BidType:      models.BidTypeCPC,
				BidAmount:    0.25,
				DailyBudget:  10,
				ContentRef:   "post:1",
				Status:       tt.from,
			}
			require.NoError(t, store.Ads().Create(seed))

			ad, err := svc.SetStatus(context.Background(), seed.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, ad.Status)
		})
	}
}

func TestSetStatus_UnknownAd(t *testing.T) {
	svc := newTestService(memory.NewStore())
	_, err := svc.SetStatus(context.Background(), 999, models.AdStatusApproved)
	assert.ErrorIs(t, err, repositories.ErrAdNotFound)
}

// raceStore runs a hook after the ad is read, standing in for a writer
// that commits between the read and the status update.
type raceStore struct {
	repositories.Store
	afterGet func()
}

func (s *raceStore) Ads() repositories.AdRepository {
	return &raceAds{AdRepository: s.Store.Ads(), after: s.afterGet}
}

type raceAds struct {
	repositories.AdRepository
	after func()
}

func (r *raceAds) GetByID(id uint) (*models.Ad, error) {
	ad, err := r.AdRepository.GetByID(id)
	if r.after != nil {
		r.after()
	}
	return ad, err
}

func TestSetStatus_PreservesConcurrentSpend(t *testing.T) {
	store := memory.NewStore()
	raced := &raceStore{Store: store}
	svc := NewService(raced, Config{MinCPCBid: 0.10, MinCPMBid: 1.00}, nil)

	seed := &models.Ad{
		AdvertiserID: 1,
		Category:     "tech",
		BidType:      models.BidTypeCPC,
		BidAmount:    0.25,
		DailyBudget:  10,
		ContentRef:   "post:1",
		Status:       models.AdStatusApproved,
	}
	require.NoError(t, store.Ads().Create(seed))

	// The settler charges the ad between the status read and write.
	raced.afterGet = func() {
		charged, err := store.Ads().GetByID(seed.ID)
		require.NoError(t, err)
		charged.SpentAmount = 4.00
		require.NoError(t, store.Ads().Save(charged))
	}

	_, err := svc.SetStatus(context.Background(), seed.ID, models.AdStatusPaused)
	require.NoError(t, err)

	stored, err := store.Ads().GetByID(seed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusPaused, stored.Status)
	assert.InDelta(t, 4.00, stored.SpentAmount, 1e-9)
}

func TestSetStatus_StaleTransitionRejected(t *testing.T) {
	store := memory.NewStore()
	raced := &raceStore{Store: store}
	svc := NewService(raced, Config{MinCPCBid: 0.10, MinCPMBid: 1.00}, nil)

	seed := &models.Ad{
		AdvertiserID: 1,
		Category:     "tech",
		BidType:      models.BidTypeCPC,
		BidAmount:    0.25,
		DailyBudget:  10,
		ContentRef:   "post:1",
		Status:       models.AdStatusApproved,
	}
	require.NoError(t, store.Ads().Create(seed))

	// Budget exhaustion completes the ad between the read and write;
	// the pause validated against the approved status must not apply.
	raced.afterGet = func() {
		require.NoError(t, store.Ads().UpdateStatus(seed.ID, models.AdStatusApproved, models.AdStatusCompleted))
	}

	_, err := svc.SetStatus(context.Background(), seed.ID, models.AdStatusPaused)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := store.Ads().GetByID(seed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusCompleted, stored.Status)
}
