package engine

import "math"

// Competitor bid-ratio distribution parameters per competition level. Fierce
// competition concentrates bids near the floor with a tighter spread.
var competitorMeanFraction = map[CompetitionLevel]float64{
	CompetitionLow:      0.7,
	CompetitionModerate: 0.5,
	CompetitionHigh:     0.35,
}

var competitorStdDev = map[CompetitionLevel]float64{
	CompetitionLow:      0.025,
	CompetitionModerate: 0.020,
	CompetitionHigh:     0.015,
}

// WinProbabilityModel fuses the bidder's ratio, assessment uncertainty and
// the competitor-count distribution into a calibrated win probability.
type WinProbabilityModel struct {
	cfg Config
}

func NewWinProbabilityModel(cfg Config) *WinProbabilityModel {
	return &WinProbabilityModel{cfg: cfg}
}

// Compute returns the probability that the given bid ratio wins against the
// expected competition. The statutory floor check comes first: a below-floor
// bid is void regardless of any distributional argument.
func (m *WinProbabilityModel) Compute(bidRatio float64, assessment AssessmentAnalysis, competition CompetitionAnalysis, floorRatio float64) float64 {
	return m.compute(bidRatio, assessment, competition.CompetitionLevel, competition.ExpectedCompetitors, floorRatio, 0)
}

// computeScenario shifts the competitor mean by the difference between a
// perturbed assessment rate and the point estimate: a higher ceiling lets
// competitors bid higher, which favors the bidder holding a fixed ratio.
func (m *WinProbabilityModel) computeScenario(bidRatio float64, assessment AssessmentAnalysis, level CompetitionLevel, competitors int, floorRatio, scenarioRate float64) float64 {
	return m.compute(bidRatio, assessment, level, competitors, floorRatio, scenarioRate-assessment.Rate)
}

func (m *WinProbabilityModel) compute(bidRatio float64, assessment AssessmentAnalysis, level CompetitionLevel, competitors int, floorRatio, meanShift float64) float64 {
	if bidRatio < floorRatio {
		return 0
	}

	// With no modeled competition only statutory validity matters.
	if competitors <= 1 {
		return m.cfg.MaxWinProbability
	}

	mean := m.CompetitorMean(floorRatio, level) + meanShift
	sigma := m.CompetitorStdDev(level, assessment.Confidence)

	// Share of a single competitor's ratio mass below the bidder's ratio.
	z := (bidRatio - mean) / sigma
	below := 0.5 * (1 + math.Erf(z/math.Sqrt2))

	// A rival eliminates the bidder only when it bids lower and survives
	// the qualification review; the win requires that no rival does.
	threat := below * m.cfg.QualPassRate
	p := math.Pow(1-threat, float64(competitors-1))

	return round3(clamp(p, 0, m.cfg.MaxWinProbability))
}

// CompetitorMean places the expected winning-neighborhood ratio between the
// statutory floor and the conservative ceiling anchor.
func (m *WinProbabilityModel) CompetitorMean(floorRatio float64, level CompetitionLevel) float64 {
	frac, ok := competitorMeanFraction[level]
	if !ok {
		frac = 0.5
	}
	return floorRatio + (m.cfg.CeilingRatio-floorRatio)*frac
}

// CompetitorStdDev widens the level spread when the assessment estimate is
// uncertain: low confidence in the ceiling blurs where rivals will land.
func (m *WinProbabilityModel) CompetitorStdDev(level CompetitionLevel, assessmentConfidence float64) float64 {
	base, ok := competitorStdDev[level]
	if !ok {
		base = 0.020
	}
	return base * (1.5 - 0.5*clamp(assessmentConfidence, 0, 1))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
