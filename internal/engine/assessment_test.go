package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(org string, rate float64, daysAgo int) AssessmentSample {
	awarded := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	return AssessmentSample{
		Organization:       org,
		EstimatedPrice:     100_000_000,
		FinalContractPrice: int64(rate * 100_000_000),
		AwardedAt:          awarded,
	}
}

func TestAssessmentDefaultBandWithoutSamples(t *testing.T) {
	est := NewAssessmentEstimator(DefaultConfig())

	analysis := est.Estimate(PredictionInput{
		Organization:   "서울시",
		BidType:        BidTypeGoods,
		EstimatedPrice: 450_000_000,
	})

	assert.Equal(t, SourceStatutoryDefault, analysis.Source)
	assert.Equal(t, 0.90, analysis.Rate)
	assert.Equal(t, 0.3, analysis.Confidence)
	assert.Equal(t, 0.88, analysis.Range.Low)
	assert.Equal(t, 0.92, analysis.Range.High)
	assert.Zero(t, analysis.SampleCount)
}

func TestAssessmentHistoricalTrimmedMean(t *testing.T) {
	est := NewAssessmentEstimator(DefaultConfig())

	samples := []AssessmentSample{
		sampleAt("한국수자원공사", 0.893, 10),
		sampleAt("한국수자원공사", 0.897, 20),
		sampleAt("한국수자원공사", 0.902, 30),
		sampleAt("한국수자원공사", 0.899, 40),
		sampleAt("한국수자원공사", 0.895, 50),
		sampleAt("한국수자원공사", 0.901, 60),
	}

	analysis := est.Estimate(PredictionInput{
		Organization:      "한국수자원공사",
		BidType:           BidTypeGoods,
		EstimatedPrice:    450_000_000,
		AssessmentSamples: samples,
	})

	assert.Equal(t, SourceHistorical, analysis.Source)
	assert.Equal(t, 6, analysis.SampleCount)
	assert.InDelta(t, 0.898, analysis.Rate, 0.003)
	assert.InDelta(t, float64(6)/15, analysis.Confidence, 1e-9)
	assert.LessOrEqual(t, analysis.Range.Low, analysis.Rate)
	assert.GreaterOrEqual(t, analysis.Range.High, analysis.Rate)
}

func TestAssessmentHybridBlendsThinHistory(t *testing.T) {
	est := NewAssessmentEstimator(DefaultConfig())

	analysis := est.Estimate(PredictionInput{
		Organization:   "한국환경공단",
		BidType:        BidTypeGoods,
		EstimatedPrice: 450_000_000,
		AssessmentSamples: []AssessmentSample{
			sampleAt("한국환경공단", 0.86, 5),
			sampleAt("한국환경공단", 0.87, 15),
		},
	})

	assert.Equal(t, SourceHybrid, analysis.Source)
	assert.Equal(t, 2, analysis.SampleCount)
	// Blend sits between the sample mean and the statutory default center.
	assert.Greater(t, analysis.Rate, 0.865)
	assert.Less(t, analysis.Rate, 0.90)
	assert.GreaterOrEqual(t, analysis.Confidence, 0.3)
}

func TestAssessmentIgnoresInsaneSamples(t *testing.T) {
	est := NewAssessmentEstimator(DefaultConfig())

	analysis := est.Estimate(PredictionInput{
		Organization:   "조달청",
		BidType:        BidTypeService,
		EstimatedPrice: 450_000_000,
		AssessmentSamples: []AssessmentSample{
			sampleAt("조달청", 3.2, 5),  // data entry error
			sampleAt("조달청", 0.01, 6), // data entry error
		},
	})

	assert.Equal(t, SourceStatutoryDefault, analysis.Source)
	assert.Equal(t, 0.89, analysis.Rate)
}

func TestAssessmentPrefersOrgSamples(t *testing.T) {
	est := NewAssessmentEstimator(DefaultConfig())

	samples := []AssessmentSample{
		sampleAt("서울시", 0.92, 5),
		sampleAt("서울시", 0.92, 6),
		sampleAt("서울시", 0.92, 7),
		sampleAt("서울시", 0.92, 8),
		sampleAt("서울시", 0.92, 9),
		sampleAt("부산시", 0.85, 5),
	}

	analysis := est.Estimate(PredictionInput{
		Organization:      "서울시",
		BidType:           BidTypeGoods,
		EstimatedPrice:    450_000_000,
		AssessmentSamples: samples,
	})

	require.Equal(t, SourceHistorical, analysis.Source)
	assert.Equal(t, 5, analysis.SampleCount)
	assert.InDelta(t, 0.92, analysis.Rate, 1e-6)
}
