package repositories

import (
	"fmt"

	"adsettle/internal/models"

	"gorm.io/gorm"
)

type balanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) GetByUserID(userID uint) (*models.Balance, error) {
	var balance models.Balance
	if err := r.db.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}

func (r *balanceRepository) Credit(userID uint, amount float64) error {
	res := r.db.Model(&models.Balance{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to credit balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		balance := &models.Balance{
			UserID:      userID,
			Balance:     amount,
			TotalEarned: amount,
		}
		if err := r.db.Create(balance).Error; err != nil {
			return fmt.Errorf("failed to create balance: %w", err)
		}
	}
	return nil
}

func (r *balanceRepository) Debit(userID uint, amount float64) error {
	res := r.db.Model(&models.Balance{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":         gorm.Expr("balance - ?", amount),
			"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to debit balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (r *balanceRepository) CreateWithdrawal(req *models.WithdrawalRequest) error {
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return nil
}

func (r *balanceRepository) GetWithdrawalByID(id uint) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	return &req, nil
}

func (r *balanceRepository) TransitionWithdrawal(req *models.WithdrawalRequest, from string) error {
	res := r.db.Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", req.ID, from).
		Updates(map[string]interface{}{
			"status":       req.Status,
			"reference":    req.Reference,
			"processed_at": req.ProcessedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to transition withdrawal request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *balanceRepository) ListWithdrawalsByUser(userID uint) ([]*models.WithdrawalRequest, error) {
	var reqs []*models.WithdrawalRequest
	err := r.db.Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	return reqs, nil
}
