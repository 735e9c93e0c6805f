package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioOrdering(t *testing.T) {
	cfg := DefaultConfig()
	model := NewWinProbabilityModel(cfg)
	gen := NewScenarioGenerator(cfg, model)

	assessment, competition := winProbFixture()
	input := PredictionInput{
		BidID:          "BID-2026-010",
		EstimatedPrice: 450_000_000,
		Now:            time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, ratio := range []float64{0.81, 0.8425, 0.87} {
		s := gen.Generate(input, ratio, assessment, competition, 0.80495)
		assert.GreaterOrEqual(t, s.Optimistic.WinProbability, s.Base.WinProbability, "ratio %.4f", ratio)
		assert.GreaterOrEqual(t, s.Base.WinProbability, s.Pessimistic.WinProbability, "ratio %.4f", ratio)
	}
}

func TestScenarioCompetitorPairing(t *testing.T) {
	cfg := DefaultConfig()
	gen := NewScenarioGenerator(cfg, NewWinProbabilityModel(cfg))

	assessment, competition := winProbFixture()
	input := PredictionInput{BidID: "BID-2026-011", EstimatedPrice: 200_000_000}

	s := gen.Generate(input, 0.8425, assessment, competition, 0.80495)

	assert.Equal(t, competition.Distribution.Min, s.Optimistic.Competitors)
	assert.Equal(t, competition.ExpectedCompetitors, s.Base.Competitors)
	assert.Equal(t, competition.Distribution.Max, s.Pessimistic.Competitors)

	assert.Equal(t, assessment.Range.High, s.Optimistic.AssessmentRate)
	assert.Equal(t, assessment.Rate, s.Base.AssessmentRate)
	assert.Equal(t, assessment.Range.Low, s.Pessimistic.AssessmentRate)
}

func TestScenarioSharedBidPrice(t *testing.T) {
	cfg := DefaultConfig()
	gen := NewScenarioGenerator(cfg, NewWinProbabilityModel(cfg))

	assessment, competition := winProbFixture()
	input := PredictionInput{BidID: "BID-2026-012", EstimatedPrice: 450_000_000}

	s := gen.Generate(input, 0.8425, assessment, competition, 0.80495)

	// All three variants price the same bid; only the world around it moves.
	assert.Equal(t, s.Base.BidPrice, s.Optimistic.BidPrice)
	assert.Equal(t, s.Base.BidPrice, s.Pessimistic.BidPrice)
	assert.Equal(t, int64(379_125_000), s.Base.BidPrice)
}

func TestScenarioExpectedRank(t *testing.T) {
	cfg := DefaultConfig()
	gen := NewScenarioGenerator(cfg, NewWinProbabilityModel(cfg))

	assessment, competition := winProbFixture()
	input := PredictionInput{BidID: "BID-2026-013", EstimatedPrice: 100_000_000}

	s := gen.Generate(input, 0.8425, assessment, competition, 0.80495)

	require.GreaterOrEqual(t, s.Optimistic.ExpectedRank, 1)
	assert.LessOrEqual(t, s.Optimistic.ExpectedRank, s.Optimistic.Competitors)
	assert.LessOrEqual(t, s.Base.ExpectedRank, s.Base.Competitors)
	assert.LessOrEqual(t, s.Pessimistic.ExpectedRank, s.Pessimistic.Competitors)
	assert.LessOrEqual(t, s.Optimistic.ExpectedRank, s.Pessimistic.ExpectedRank)
}

func TestExpectedRankFloorsAtOne(t *testing.T) {
	assert.Equal(t, 1, expectedRank(1, 0.2))
	assert.Equal(t, 1, expectedRank(2, 0.2))
	assert.Equal(t, 4, expectedRank(12, 0.3))
}
