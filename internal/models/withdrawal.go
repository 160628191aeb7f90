package models

import (
	"time"
)

// Withdrawal statuses
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// WithdrawalRequest is a two-phase payout: creating the request
// reserves nothing, the balance is only decremented when an operator
// marks the request paid.
type WithdrawalRequest struct {
	ID          uint    `gorm:"primarykey"`
	UserID      uint    `gorm:"not null;index"`
	Amount      float64 `gorm:"not null"`
	Method      string  `gorm:"not null"`
	Details     string
	Status      string `gorm:"not null;default:'pending';index"`
	Reference   string // external payment reference, set when paid
	RequestedAt time.Time
	ProcessedAt *time.Time
}
