// Package ledger owns withdrawable balances. Credits come only from
// settlement; debits come only from paying out a withdrawal request.
// Withdrawals are two-phase: requesting reserves nothing, the balance
// drops when an operator marks the request paid.
package ledger

import (
	"context"
	"errors"
	"time"

	"adsettle/internal/models"
	"adsettle/internal/repositories"
	"adsettle/internal/services/events"

	"github.com/google/uuid"
)

// BalanceCache is the subset of the cache layer the ledger touches.
type BalanceCache interface {
	GetBalance(ctx context.Context, userID uint) (*models.Balance, bool)
	CacheBalance(ctx context.Context, balance *models.Balance) error
	InvalidateBalance(ctx context.Context, userID uint) error
}

// Config holds ledger settings.
type Config struct {
	// WithdrawalMinimum is the smallest amount a user may request.
	WithdrawalMinimum float64
}

type Service interface {
	Credit(ctx context.Context, userID uint, amount float64) error
	GetBalance(ctx context.Context, userID uint) (*models.Balance, error)
	RequestWithdrawal(ctx context.Context, userID uint, amount float64, method, details string) (*models.WithdrawalRequest, error)
	MarkWithdrawalPaid(ctx context.Context, withdrawalID uint) error
	RejectWithdrawal(ctx context.Context, withdrawalID uint) error
	ListWithdrawals(ctx context.Context, userID uint) ([]*models.WithdrawalRequest, error)
}

type service struct {
	store   repositories.Store
	cache   BalanceCache
	config  Config
	emitter events.Emitter
}

func NewService(store repositories.Store, cache BalanceCache, config Config, emitter events.Emitter) Service {
	if store == nil {
		panic("store is required")
	}
	if config.WithdrawalMinimum <= 0 {
		config.WithdrawalMinimum = 50
	}
	if emitter == nil {
		emitter = events.NewLogEmitter()
	}
	return &service{store: store, cache: cache, config: config, emitter: emitter}
}

func (s *service) Credit(ctx context.Context, userID uint, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	err := s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		return tx.Balances().Credit(userID, amount)
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateBalance(ctx, userID)
	}
	return nil
}

func (s *service) GetBalance(ctx context.Context, userID uint) (*models.Balance, error) {
	if s.cache != nil {
		if balance, ok := s.cache.GetBalance(ctx, userID); ok {
			return balance, nil
		}
	}
	balance, err := s.store.Balances().GetByUserID(userID)
	if errors.Is(err, repositories.ErrBalanceNotFound) {
		// Users without earnings have an implicit zero balance.
		return &models.Balance{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.CacheBalance(ctx, balance)
	}
	return balance, nil
}

// RequestWithdrawal validates and files a payout request. The balance
// itself is untouched; double-spending a merely requested amount is
// prevented by re-checking funds when the request is paid.
func (s *service) RequestWithdrawal(ctx context.Context, userID uint, amount float64, method, details string) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount < s.config.WithdrawalMinimum {
		return nil, ErrBelowMinimum
	}

	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount > balance.Balance {
		return nil, ErrInsufficientBalance
	}

	req := &models.WithdrawalRequest{
		UserID:      userID,
		Amount:      amount,
		Method:      method,
		Details:     details,
		Status:      models.WithdrawalStatusPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.store.Balances().CreateWithdrawal(req); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.Event{
		Name: events.WithdrawalRequested,
		Payload: map[string]interface{}{
			"withdrawal_id": req.ID,
			"user_id":       userID,
			"amount":        amount,
			"method":        method,
		},
	})
	return req, nil
}

// MarkWithdrawalPaid is the admin-side completion of a payout. The
// debit is a single funds-guarded statement and the status flip is
// guarded by the pending status, both in one transaction, so a
// concurrent settlement credit is never overwritten and two pays of
// one request can never both debit.
func (s *service) MarkWithdrawalPaid(ctx context.Context, withdrawalID uint) error {
	var userID uint
	err := s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		req, err := tx.Balances().GetWithdrawalByID(withdrawalID)
		if err != nil {
			return err
		}
		if req.Status != models.WithdrawalStatusPending {
			return ErrWithdrawalClosed
		}

		if err := tx.Balances().Debit(req.UserID, req.Amount); err != nil {
			if errors.Is(err, repositories.ErrInsufficientFunds) {
				return ErrInsufficientBalance
			}
			return err
		}

		now := time.Now().UTC()
		req.Status = models.WithdrawalStatusPaid
		req.Reference = uuid.NewString()
		req.ProcessedAt = &now
		userID = req.UserID
		if err := tx.Balances().TransitionWithdrawal(req, models.WithdrawalStatusPending); err != nil {
			if errors.Is(err, repositories.ErrStaleStatus) {
				return ErrWithdrawalClosed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateBalance(ctx, userID)
	}
	return nil
}

func (s *service) RejectWithdrawal(ctx context.Context, withdrawalID uint) error {
	req, err := s.store.Balances().GetWithdrawalByID(withdrawalID)
	if err != nil {
		return err
	}
	if req.Status != models.WithdrawalStatusPending {
		return ErrWithdrawalClosed
	}
	now := time.Now().UTC()
	req.Status = models.WithdrawalStatusRejected
	req.ProcessedAt = &now
	// The pending guard makes a reject racing a pay lose cleanly
	// instead of overwriting a paid request.
	if err := s.store.Balances().TransitionWithdrawal(req, models.WithdrawalStatusPending); err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return ErrWithdrawalClosed
		}
		return err
	}
	return nil
}

func (s *service) ListWithdrawals(ctx context.Context, userID uint) ([]*models.WithdrawalRequest, error) {
	return s.store.Balances().ListWithdrawalsByUser(userID)
}
