package auction

// Config holds auction tuning knobs.
type Config struct {
	// ReachFactor converts a channel's subscriber count into the
	// estimated impression reach written on the auction row. It is a
	// tunable constant, not a measured value.
	ReachFactor float64
}

// Result is the outcome of one channel's auction attempt within a
// cycle. Exactly one of the terminal states holds: a winner was
// written, the channel was skipped, or the attempt failed.
type Result struct {
	ChannelID   uint
	AuctionID   uint
	WinningAdID uint
	WinningBid  float64
	// Skipped is true when the channel had no eligible candidates or
	// already has an auction for the date.
	Skipped bool
	Err     error
}

// scoredCandidate pairs an ad with its computed ranking scores.
type scoredCandidate struct {
	adID         uint
	bidAmount    float64
	qualityScore float64
	finalScore   float64
	createdAtNs  int64
}
