package engine

import "time"

// RateBand is a statutory default assessment-rate band for one bid type.
type RateBand struct {
	Center float64
	Low    float64
	High   float64
}

// Config collects every tunable the engine uses. Statutory values change by
// regulation revision, so nothing here is hard-coded at call sites.
type Config struct {
	// Qualification review
	PassThreshold      float64
	LookbackYears      int
	PenaltyWindowYears int

	// Assessment-rate estimation
	SampleWindow        int // statutory 15 preliminary-price draws convention
	MinHistoricalSample int // below this the estimate blends with the default
	TrimFraction        float64
	DefaultBands        map[BidType]RateBand
	DefaultConfidence   float64

	// Competition estimation
	UrgencyMultiplier      float64
	CompetitorSpread       float64 // stddev as fraction of the expected count
	ExpectedFloor          int
	DistributionFloor      int
	ModerateCompetitorsAt  int
	HighCompetitorsAt      int
	EligiblePoolMultiplier float64

	// Win-probability model
	CeilingRatio      float64 // upper bid-ratio anchor (conservative target)
	QualPassRate      float64 // share of competitors expected to pass review
	MaxWinProbability float64

	// Price strategy
	AggressiveMargin float64
	RangeLowMargin   float64

	// Recommendation ladder
	StrongBidProbability float64
	BidProbability       float64
	ReviewProbability    float64
	ComfortMargin        float64

	// Confidence classification
	HighConfidenceAt   float64
	MediumConfidenceAt float64

	// ReferenceTime anchors date arithmetic when the input carries no Now.
	ReferenceTime time.Time
}

// DefaultConfig returns the 2025 statutory defaults for goods-centric
// qualification-review auctions.
func DefaultConfig() Config {
	return Config{
		PassThreshold:      85.0,
		LookbackYears:      5,
		PenaltyWindowYears: 2,

		SampleWindow:        15,
		MinHistoricalSample: 5,
		TrimFraction:        0.1,
		DefaultBands: map[BidType]RateBand{
			BidTypeGoods:        {Center: 0.90, Low: 0.88, High: 0.92},
			BidTypeService:      {Center: 0.89, Low: 0.87, High: 0.91},
			BidTypeConstruction: {Center: 0.87, Low: 0.85, High: 0.89},
		},
		DefaultConfidence: 0.3,

		UrgencyMultiplier:      0.8,
		CompetitorSpread:       0.25,
		ExpectedFloor:          3,
		DistributionFloor:      1,
		ModerateCompetitorsAt:  8,
		HighCompetitorsAt:      15,
		EligiblePoolMultiplier: 2.0,

		CeilingRatio:      0.88,
		QualPassRate:      0.6,
		MaxWinProbability: 0.95,

		AggressiveMargin: 0.005,
		RangeLowMargin:   0.002,

		StrongBidProbability: 0.25,
		BidProbability:       0.10,
		ReviewProbability:    0.05,
		ComfortMargin:        3.0,

		HighConfidenceAt:   0.75,
		MediumConfidenceAt: 0.6,
	}
}

// now resolves the time anchor for one prediction.
func (c Config) now(input PredictionInput) time.Time {
	if !input.Now.IsZero() {
		return input.Now
	}
	if !c.ReferenceTime.IsZero() {
		return c.ReferenceTime
	}
	return time.Now()
}
