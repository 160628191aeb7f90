package ads

import "errors"

// Service errors
var (
	ErrBidTooLow         = errors.New("bid amount below minimum for bid type")
	ErrBudgetInvalid     = errors.New("daily budget must cover at least one bid")
	ErrInvalidBidType    = errors.New("invalid bid type")
	ErrInvalidCategory   = errors.New("category is required")
	ErrInvalidContent    = errors.New("content reference is required")
	ErrInvalidTransition = errors.New("invalid ad status transition")
)
