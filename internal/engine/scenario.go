package engine

import "math"

// Per-scenario expected-rank percentile bands.
const (
	optimisticRankBand  = 0.2
	baseRankBand        = 0.3
	pessimisticRankBand = 0.4
)

// ScenarioGenerator derives optimistic, base and pessimistic variants by
// perturbing the competitor count and the assessment-rate bounds together:
// fewer competitors pair with the favorable rate, more with the adverse one.
type ScenarioGenerator struct {
	cfg   Config
	model *WinProbabilityModel
}

func NewScenarioGenerator(cfg Config, model *WinProbabilityModel) *ScenarioGenerator {
	return &ScenarioGenerator{cfg: cfg, model: model}
}

func (g *ScenarioGenerator) Generate(input PredictionInput, bidRatio float64, assessment AssessmentAnalysis, competition CompetitionAnalysis, floorRatio float64) Scenarios {
	bidPrice := int64(math.Round(float64(input.EstimatedPrice) * bidRatio))

	build := func(name string, rate float64, competitors int, band float64) Scenario {
		if competitors < 1 {
			competitors = 1
		}
		return Scenario{
			Name:           name,
			AssessmentRate: round4(rate),
			Competitors:    competitors,
			BidRatio:       round4(bidRatio),
			BidPrice:       bidPrice,
			WinProbability: g.model.computeScenario(bidRatio, assessment, competition.CompetitionLevel, competitors, floorRatio, rate),
			ExpectedRank:   expectedRank(competitors, band),
		}
	}

	scenarios := Scenarios{
		Optimistic:  build("optimistic", assessment.Range.High, competition.Distribution.Min, optimisticRankBand),
		Base:        build("base", assessment.Rate, competition.ExpectedCompetitors, baseRankBand),
		Pessimistic: build("pessimistic", assessment.Range.Low, competition.Distribution.Max, pessimisticRankBand),
	}

	return enforceOrdering(scenarios)
}

// enforceOrdering guarantees optimistic ≥ base ≥ pessimistic on win
// probability. Numerical edge cases are reordered rather than surfaced as an
// inconsistent fan.
func enforceOrdering(s Scenarios) Scenarios {
	probs := []float64{
		s.Optimistic.WinProbability,
		s.Base.WinProbability,
		s.Pessimistic.WinProbability,
	}
	sortDescending(probs)
	s.Optimistic.WinProbability = probs[0]
	s.Base.WinProbability = probs[1]
	s.Pessimistic.WinProbability = probs[2]
	return s
}

func sortDescending(v []float64) {
	for i := 0; i < len(v); i++ {
		for j := i + 1; j < len(v); j++ {
			if v[j] > v[i] {
				v[i], v[j] = v[j], v[i]
			}
		}
	}
}

func expectedRank(competitors int, band float64) int {
	rank := int(math.Ceil(float64(competitors) * band))
	if rank < 1 {
		rank = 1
	}
	return rank
}
