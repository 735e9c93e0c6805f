package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func competitionInput() PredictionInput {
	return PredictionInput{
		BidID:          "BID-001",
		BidTitle:       "초음파유량계 구매 설치",
		Organization:   "서울시 상수도사업본부",
		EstimatedPrice: 450_000_000,
		BidType:        BidTypeGoods,
		Deadline:       time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestCompetitionUrgencySuppressesParticipation(t *testing.T) {
	est := NewCompetitionEstimator(DefaultConfig())

	normal := est.Estimate(competitionInput())

	urgent := competitionInput()
	urgent.IsUrgent = true
	suppressed := est.Estimate(urgent)

	assert.Less(t, suppressed.ExpectedCompetitors, normal.ExpectedCompetitors)
	assert.Equal(t, DefaultConfig().UrgencyMultiplier, suppressed.UrgencyMultiplier)
	assert.Equal(t, 1.0, normal.UrgencyMultiplier)
}

func TestCompetitionUrgencySuppressesSmallFields(t *testing.T) {
	est := NewCompetitionEstimator(DefaultConfig())

	// A thin field where both raw counts would round to the same integer:
	// heat meters, unknown local buyer, small budget, December Friday
	// deadline gives raw ≈ 4.4 and 4.4 × 0.8 ≈ 3.5.
	input := PredictionInput{
		BidID:          "BID-2026-050",
		BidTitle:       "열량계 교체",
		Organization:   "무명군청",
		EstimatedPrice: 30_000_000,
		Deadline:       time.Date(2026, 12, 4, 10, 0, 0, 0, time.UTC),
	}

	normal := est.Estimate(input)

	input.IsUrgent = true
	suppressed := est.Estimate(input)

	assert.Less(t, suppressed.ExpectedCompetitors, normal.ExpectedCompetitors)
	assert.GreaterOrEqual(t, suppressed.ExpectedCompetitors, DefaultConfig().ExpectedFloor)
}

func TestCompetitionDistributionEnvelope(t *testing.T) {
	est := NewCompetitionEstimator(DefaultConfig())
	analysis := est.Estimate(competitionInput())

	assert.GreaterOrEqual(t, analysis.Distribution.Min, 1)
	assert.LessOrEqual(t, analysis.Distribution.Min, analysis.ExpectedCompetitors)
	assert.GreaterOrEqual(t, analysis.Distribution.Max, analysis.ExpectedCompetitors)
}

func TestCompetitionLevelClassification(t *testing.T) {
	est := NewCompetitionEstimator(DefaultConfig())

	assert.Equal(t, CompetitionLow, est.classify(5))
	assert.Equal(t, CompetitionModerate, est.classify(10))
	assert.Equal(t, CompetitionHigh, est.classify(20))
}

func TestCompetitionBidDensityBounds(t *testing.T) {
	est := NewCompetitionEstimator(DefaultConfig())

	big := competitionInput()
	big.EstimatedPrice = 20_000_000_000
	big.Organization = "조달청"
	analysis := est.Estimate(big)

	assert.GreaterOrEqual(t, analysis.BidDensity, 0.0)
	assert.LessOrEqual(t, analysis.BidDensity, 1.0)
}

func TestCompetitionKnownCategoryAndBuyerRaiseConfidence(t *testing.T) {
	est := NewCompetitionEstimator(DefaultConfig())

	known := est.Estimate(competitionInput())

	vague := competitionInput()
	vague.BidTitle = "물품 일괄 구매"
	vague.Organization = "소규모 발주기관"
	unknown := est.Estimate(vague)

	assert.Greater(t, known.Confidence, unknown.Confidence)
	assert.LessOrEqual(t, known.Confidence, 0.85)
}

func TestDetectCategory(t *testing.T) {
	assert.Equal(t, categoryFlowMeter, detectCategory("초음파유량계 구매"))
	assert.Equal(t, categoryPump, detectCategory("이송 펌프 교체"))
	assert.Equal(t, categoryOther, detectCategory("사무용 가구"))
}
