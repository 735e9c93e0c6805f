package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineNow = time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

func predictionInput() PredictionInput {
	return PredictionInput{
		BidID:          "20260815001-00",
		BidTitle:       "초음파유량계 구매 설치",
		Organization:   "한국수자원공사",
		EstimatedPrice: 450_000_000,
		BidType:        BidTypeGoods,
		ContractType:   ContractQualificationReview,
		Strategy:       StrategyBalanced,
		CreditRating:   "A0",
		TechStaffCount: 3,
		Deadline:       time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		Now:            engineNow,
		DeliveryRecords: []DeliveryRecord{
			{
				Organization: "한국농어촌공사",
				ProductName:  "초음파유량계",
				Amount:       85_000_000,
				CompletedAt:  engineNow.AddDate(-1, 0, 0),
				Category:     "유량계",
			},
		},
		Certifications: []string{"ISO 9001"},
	}
}

func TestGeneratePredictionValidation(t *testing.T) {
	eng := New(DefaultConfig())

	cases := []struct {
		name   string
		mutate func(*PredictionInput)
		field  string
	}{
		{"empty bid id", func(in *PredictionInput) { in.BidID = "" }, "bidId"},
		{"zero price", func(in *PredictionInput) { in.EstimatedPrice = 0 }, "estimatedPrice"},
		{"negative price", func(in *PredictionInput) { in.EstimatedPrice = -1 }, "estimatedPrice"},
		{"unknown bid type", func(in *PredictionInput) { in.BidType = "realestate" }, "bidType"},
		{"unknown strategy", func(in *PredictionInput) { in.Strategy = "yolo" }, "strategy"},
		{"negative proposed price", func(in *PredictionInput) { in.ProposedPrice = -100 }, "proposedPrice"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := predictionInput()
			tc.mutate(&input)
			result, err := eng.GeneratePrediction(input)
			require.Nil(t, result)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestGeneratePredictionDefaults(t *testing.T) {
	eng := New(DefaultConfig())

	input := predictionInput()
	input.BidType = ""
	input.ContractType = ""
	input.Strategy = ""

	result, err := eng.GeneratePrediction(input)
	require.NoError(t, err)
	assert.Equal(t, StrategyBalanced, result.Strategy)
	// goods + qualification review over the 210M notice threshold.
	assert.Equal(t, 0.80495, result.FloorRatio)
}

func TestGeneratePredictionEndToEnd(t *testing.T) {
	eng := New(DefaultConfig())

	result, err := eng.GeneratePrediction(predictionInput())
	require.NoError(t, err)

	assert.Equal(t, "20260815001-00", result.BidID)
	assert.Equal(t, 0.80495, result.FloorRatio)
	assert.Equal(t, int64(362_227_500), result.FloorPrice)

	// Price window sits above the statutory floor and contains the optimum.
	assert.GreaterOrEqual(t, result.BidPriceRange.Low, result.FloorPrice)
	assert.LessOrEqual(t, result.BidPriceRange.Low, result.OptimalBidPrice)
	assert.LessOrEqual(t, result.OptimalBidPrice, result.BidPriceRange.High)
	assert.GreaterOrEqual(t, result.OptimalBidRatio, result.FloorRatio)

	assert.GreaterOrEqual(t, result.WinProbability, 0.0)
	assert.LessOrEqual(t, result.WinProbability, DefaultConfig().MaxWinProbability)

	// A single modest delivery record cannot carry the 100-point review.
	assert.False(t, result.Qualification.WillPass)
	assert.Less(t, result.Qualification.Score.Total, result.Qualification.PassThreshold)
	assert.Equal(t, RecommendSkip, result.Recommendation)
	assert.Equal(t, RiskHigh, result.RiskLevel)

	assert.NotEmpty(t, result.Reasoning)
	assert.NotEmpty(t, result.Qualification.Recommendations)

	assert.GreaterOrEqual(t, result.Scenarios.Optimistic.WinProbability, result.Scenarios.Base.WinProbability)
	assert.GreaterOrEqual(t, result.Scenarios.Base.WinProbability, result.Scenarios.Pessimistic.WinProbability)
}

func TestGeneratePredictionBasePriceCapsRange(t *testing.T) {
	eng := New(DefaultConfig())

	plain, err := eng.GeneratePrediction(predictionInput())
	require.NoError(t, err)
	assert.Zero(t, plain.EvaluationCeiling)
	assert.Equal(t, int64(396_000_000), plain.BidPriceRange.High)

	input := predictionInput()
	input.BasePrice = 430_000_000

	capped, err := eng.GeneratePrediction(input)
	require.NoError(t, err)

	// No samples: default goods rate 0.90, so the ceiling is 430M × 0.90.
	assert.Equal(t, int64(387_000_000), capped.EvaluationCeiling)
	assert.Equal(t, int64(387_000_000), capped.BidPriceRange.High)
	assert.Less(t, capped.BidPriceRange.High, plain.BidPriceRange.High)

	// The window stays coherent under the cap.
	assert.GreaterOrEqual(t, capped.BidPriceRange.Low, capped.FloorPrice)
	assert.LessOrEqual(t, capped.BidPriceRange.Low, capped.OptimalBidPrice)
	assert.LessOrEqual(t, capped.OptimalBidPrice, capped.BidPriceRange.High)
}

func TestGeneratePredictionDeterministic(t *testing.T) {
	eng := New(DefaultConfig())

	first, err := eng.GeneratePrediction(predictionInput())
	require.NoError(t, err)
	second, err := eng.GeneratePrediction(predictionInput())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestGeneratePredictionProposedPriceBelowFloor(t *testing.T) {
	eng := New(DefaultConfig())

	input := predictionInput()
	input.ProposedPrice = 300_000_000 // ratio 0.6667, floor is 0.80495

	result, err := eng.GeneratePrediction(input)
	require.NoError(t, err)

	assert.Zero(t, result.WinProbability)
	assert.Equal(t, RecommendSkip, result.Recommendation)
	assert.Equal(t, RiskHigh, result.RiskLevel)
	// The recommended window still respects the floor even when the caller's
	// price does not.
	assert.GreaterOrEqual(t, result.BidPriceRange.Low, result.FloorPrice)
}

func TestGeneratePredictionProposedPriceEchoed(t *testing.T) {
	eng := New(DefaultConfig())

	input := predictionInput()
	input.ProposedPrice = 380_000_000

	result, err := eng.GeneratePrediction(input)
	require.NoError(t, err)

	assert.InDelta(t, 380.0/450.0, result.OptimalBidRatio, 1e-4)
	assert.Equal(t, int64(380_000_000), result.OptimalBidPrice)
}

func TestGeneratePredictionStrategyOrdering(t *testing.T) {
	eng := New(DefaultConfig())

	ratios := map[Strategy]float64{}
	for _, strategy := range []Strategy{StrategyAggressive, StrategyBalanced, StrategyConservative} {
		input := predictionInput()
		input.Strategy = strategy
		result, err := eng.GeneratePrediction(input)
		require.NoError(t, err)
		ratios[strategy] = result.OptimalBidRatio
	}

	assert.Less(t, ratios[StrategyAggressive], ratios[StrategyBalanced])
	assert.Less(t, ratios[StrategyBalanced], ratios[StrategyConservative])
	assert.InDelta(t, DefaultConfig().CeilingRatio, ratios[StrategyConservative], 1e-9)
}

func TestGeneratePredictionUrgencyLowersCompetition(t *testing.T) {
	eng := New(DefaultConfig())

	normal, err := eng.GeneratePrediction(predictionInput())
	require.NoError(t, err)

	urgent := predictionInput()
	urgent.IsUrgent = true
	rushed, err := eng.GeneratePrediction(urgent)
	require.NoError(t, err)

	assert.Less(t, rushed.Competition.ExpectedCompetitors, normal.Competition.ExpectedCompetitors)
	assert.GreaterOrEqual(t, rushed.WinProbability, normal.WinProbability)
}

func TestGeneratePredictionUncertaintyFactors(t *testing.T) {
	eng := New(DefaultConfig())

	input := predictionInput()
	input.DeliveryRecords = nil
	input.CreditRating = "??"
	input.Deadline = engineNow.AddDate(0, -1, 0)

	result, err := eng.GeneratePrediction(input)
	require.NoError(t, err)

	joined := ""
	for _, f := range result.UncertaintyFactors {
		joined += f + "\n"
	}
	assert.Contains(t, joined, "no delivery records")
	assert.Contains(t, joined, "unrecognized")
	assert.Contains(t, joined, "deadline has already passed")
	assert.Contains(t, joined, "statutory default band")
}

func TestCacheKeyParts(t *testing.T) {
	input := predictionInput()
	input.ProductID = "P-100"

	bidID, productID, strategy := CacheKeyParts(input)
	assert.Equal(t, input.BidID, bidID)
	assert.Equal(t, "P-100", productID)
	assert.Equal(t, StrategyBalanced, strategy)
}
