package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWithdrawalClosed    = errors.New("withdrawal request already processed")
)
