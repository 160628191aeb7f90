package ads

// Config holds bid validation settings. The floors are distinct per
// bid type: a CPC bid is priced per click, a CPM bid per thousand
// impressions.
type Config struct {
	MinCPCBid float64
	MinCPMBid float64
}

// SubmitAdInput is the ad-submission request from the advertiser UI.
type SubmitAdInput struct {
	AdvertiserID uint
	Category     string
	BidType      string
	BidAmount    float64
	DailyBudget  float64
	ContentRef   string
}
