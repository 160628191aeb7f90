package settlement

import "errors"

// Service errors
var (
	ErrCounterRegression = errors.New("impressions and clicks are cumulative and cannot decrease")
	ErrInvalidCounters   = errors.New("impressions and clicks must be non-negative")
	ErrClicksExceedViews = errors.New("clicks cannot exceed impressions")
)
