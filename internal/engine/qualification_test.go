package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoringNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func scoringInput() PredictionInput {
	return PredictionInput{
		BidID:          "BID-2026-001",
		BidTitle:       "초음파유량계 구매",
		Organization:   "한국수자원공사",
		EstimatedPrice: 450_000_000,
		BidType:        BidTypeGoods,
		ContractType:   ContractQualificationReview,
		CreditRating:   "A0",
		TechStaffCount: 3,
		Now:            scoringNow,
		DeliveryRecords: []DeliveryRecord{
			{
				Organization: "한국농어촌공사",
				ProductName:  "초음파유량계",
				Amount:       85_000_000,
				CompletedAt:  scoringNow.AddDate(-1, 0, 0),
				Category:     "유량계",
			},
		},
		Certifications: []string{"ISO 9001"},
	}
}

func TestCreditScoreTable(t *testing.T) {
	score, ok := CreditScore("AAA")
	assert.True(t, ok)
	assert.Equal(t, 15.0, score)

	score, ok = CreditScore("A0")
	assert.True(t, ok)
	assert.Equal(t, 12.5, score)

	score, ok = CreditScore("D")
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)

	score, ok = CreditScore("Z9")
	assert.False(t, ok)
	assert.Equal(t, defaultCreditScore, score)
}

func TestQualificationSubScoreBounds(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())
	result := scorer.Score(scoringInput(), 0.85, 0.80495)

	s := result.Score
	assert.GreaterOrEqual(t, s.DeliveryRecord, 0.0)
	assert.LessOrEqual(t, s.DeliveryRecord, 25.0)
	assert.GreaterOrEqual(t, s.TechCapability, 0.0)
	assert.LessOrEqual(t, s.TechCapability, 5.0)
	assert.GreaterOrEqual(t, s.FinancialStatus, 0.0)
	assert.LessOrEqual(t, s.FinancialStatus, 15.0)
	assert.GreaterOrEqual(t, s.PriceScore, 0.0)
	assert.LessOrEqual(t, s.PriceScore, 50.0)
	assert.GreaterOrEqual(t, s.Reliability, -5.0)
	assert.LessOrEqual(t, s.Reliability, 5.0)
	assert.GreaterOrEqual(t, s.Total, 0.0)
	assert.LessOrEqual(t, s.Total, 100.0)
}

func TestQualificationDeliveryScoreMatchesCategory(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())
	result := scorer.Score(scoringInput(), 0.85, 0.80495)

	// 85M identical-category record on a 450M tender lands in the low step
	// band, not zero.
	assert.Greater(t, result.Score.DeliveryRecord, 0.0)
	assert.Less(t, result.Score.DeliveryRecord, 25.0)
}

func TestQualificationRecencyWeighting(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())

	fresh := scoringInput()
	fresh.DeliveryRecords[0].Amount = 500_000_000

	stale := scoringInput()
	stale.DeliveryRecords[0].Amount = 500_000_000
	stale.DeliveryRecords[0].CompletedAt = scoringNow.AddDate(-4, -6, 0)

	freshScore := scorer.Score(fresh, 0.85, 0.80495).Score.DeliveryRecord
	staleScore := scorer.Score(stale, 0.85, 0.80495).Score.DeliveryRecord
	assert.GreaterOrEqual(t, freshScore, staleScore)
	assert.Greater(t, staleScore, 0.0)
}

func TestQualificationExpiredRecordsIgnored(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())

	input := scoringInput()
	input.DeliveryRecords[0].CompletedAt = scoringNow.AddDate(-7, 0, 0)

	result := scorer.Score(input, 0.85, 0.80495)
	assert.Zero(t, result.Score.DeliveryRecord)
}

func TestQualificationPriceScore(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())

	// At the floor: full 50 points.
	atFloor := scorer.priceScore(0.80495, 0.80495)
	assert.InDelta(t, 50.0, atFloor, 1e-9)

	// Below the floor: void bid, zero points.
	assert.Zero(t, scorer.priceScore(0.80, 0.80495))

	// Higher ratios taper off monotonically.
	assert.Greater(t, scorer.priceScore(0.85, 0.80495), scorer.priceScore(0.88, 0.80495))
}

func TestQualificationReliabilityPenalties(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())

	input := scoringInput()
	input.Penalties = []Penalty{
		{Type: PenaltyDeliveryDelay, Date: scoringNow.AddDate(0, -6, 0), Points: 2},
		{Type: PenaltyQualityIssue, Date: scoringNow.AddDate(-4, 0, 0), Points: 3}, // outside window
	}

	result := scorer.Score(input, 0.85, 0.80495)
	assert.Less(t, result.Score.Reliability, 0.5)
	assert.GreaterOrEqual(t, result.Score.Reliability, -5.0)
}

func TestQualificationZeroEvidence(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())

	input := scoringInput()
	input.DeliveryRecords = nil
	input.Certifications = nil
	input.TechStaffCount = 0

	result := scorer.Score(input, 0.85, 0.80495)

	assert.Zero(t, result.Score.DeliveryRecord)
	assert.Zero(t, result.Score.TechCapability)
	assert.False(t, result.WillPass)
	require.NotEmpty(t, result.Recommendations)
	assert.True(t, strings.Contains(result.Recommendations[0], "delivery record"),
		"largest gap should be delivery records, got %q", result.Recommendations[0])
}

func TestQualificationRecommendationsOrderedByGain(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())
	result := scorer.Score(scoringInput(), 0.85, 0.80495)

	require.NotEmpty(t, result.Recommendations)
	// Delivery is the largest remaining lever for this profile.
	assert.Contains(t, result.Recommendations[0], "delivery")
}

func TestQualificationTotalRecomputedFromParts(t *testing.T) {
	scorer := NewQualificationScorer(DefaultConfig())
	result := scorer.Score(scoringInput(), 0.85, 0.80495)

	s := result.Score
	sum := s.DeliveryRecord + s.TechCapability + s.FinancialStatus + s.PriceScore + s.Reliability
	assert.InDelta(t, sum, s.Total, 0.3) // sub-scores are rounded to 0.1
}
