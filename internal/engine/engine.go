package engine

import (
	"fmt"
	"math"
)

// Engine sequences the analysis components into one prediction. It is a pure
// function of its input: no shared mutable state, no I/O, and identical input
// always produces an identical result.
type Engine struct {
	cfg         Config
	assessment  *AssessmentEstimator
	competition *CompetitionEstimator
	scorer      *QualificationScorer
	model       *WinProbabilityModel
	scenarios   *ScenarioGenerator
}

func New(cfg Config) *Engine {
	model := NewWinProbabilityModel(cfg)
	return &Engine{
		cfg:         cfg,
		assessment:  NewAssessmentEstimator(cfg),
		competition: NewCompetitionEstimator(cfg),
		scorer:      NewQualificationScorer(cfg),
		model:       model,
		scenarios:   NewScenarioGenerator(cfg, model),
	}
}

// GeneratePrediction runs the full pipeline. Only unusable input surfaces as
// an error; missing supporting data degrades confidence and is reported in
// the result's uncertainty factors.
func (e *Engine) GeneratePrediction(input PredictionInput) (*PredictionResult, error) {
	input, err := e.normalize(input)
	if err != nil {
		return nil, err
	}

	now := e.cfg.now(input)
	var uncertainty []string
	var reasoning []string

	assessment := e.assessment.Estimate(input)
	switch assessment.Source {
	case SourceStatutoryDefault:
		uncertainty = append(uncertainty, "no historical assessment samples for this organization; statutory default band applied")
	case SourceHybrid:
		uncertainty = append(uncertainty, fmt.Sprintf("only %d historical assessment samples; estimate blended with the statutory default", assessment.SampleCount))
	}
	reasoning = append(reasoning, fmt.Sprintf(
		"expected assessment rate %.2f%% (confidence %.0f%%, range %.2f%%~%.2f%%, source %s)",
		assessment.Rate*100, assessment.Confidence*100,
		assessment.Range.Low*100, assessment.Range.High*100, assessment.Source))

	floorRatio, floorKnown := FloorRatio(input.BidType, input.ContractType, input.EstimatedPrice)
	if !floorKnown {
		uncertainty = append(uncertainty, fmt.Sprintf(
			"no statutory floor ratio for contract type %q; most conservative %s floor applied", input.ContractType, input.BidType))
	}
	floorPrice := int64(math.Round(float64(input.EstimatedPrice) * floorRatio))
	reasoning = append(reasoning, fmt.Sprintf(
		"statutory floor ratio %.3f%%, floor price %d", floorRatio*100, floorPrice))

	competition := e.competition.Estimate(input)
	reasoning = append(reasoning, fmt.Sprintf(
		"expected competitors %d (%s competition, range %d~%d)",
		competition.ExpectedCompetitors, competition.CompetitionLevel,
		competition.Distribution.Min, competition.Distribution.Max))
	if competition.Confidence < 0.7 {
		uncertainty = append(uncertainty, "competition estimate carries high uncertainty for this category and buyer")
	}
	if input.IsUrgent {
		reasoning = append(reasoning, fmt.Sprintf(
			"urgent tender: participation suppressed by the %.1f urgency multiplier", competition.UrgencyMultiplier))
	}

	if len(input.DeliveryRecords) == 0 {
		uncertainty = append(uncertainty, "no delivery records supplied; delivery score is zero")
	}
	if _, known := CreditScore(input.CreditRating); !known {
		uncertainty = append(uncertainty, fmt.Sprintf("credit rating %q unrecognized; mid-table default applied", input.CreditRating))
	}
	staleDeadline := !input.Deadline.IsZero() && input.Deadline.Before(now)
	if staleDeadline {
		uncertainty = append(uncertainty, "deadline has already passed; prediction is retrospective")
	}

	bidRatio, proposedOverride := e.targetRatio(input, floorRatio, competition.CompetitionLevel)
	if proposedOverride {
		reasoning = append(reasoning, fmt.Sprintf(
			"recomputed at the proposed price %d (ratio %.2f%%)", input.ProposedPrice, bidRatio*100))
	}

	lowRatio := floorRatio + e.cfg.RangeLowMargin
	highRatio := e.cfg.CeilingRatio

	// An announced base price caps evaluation at basePrice × assessment
	// rate; the recommended window must not price above it.
	var evaluationCeiling int64
	if input.BasePrice > 0 {
		evaluationCeiling = int64(math.Round(float64(input.BasePrice) * assessment.Rate))
		ceilingRatio := float64(evaluationCeiling) / float64(input.EstimatedPrice)
		if ceilingRatio < highRatio {
			highRatio = ceilingRatio
			reasoning = append(reasoning, fmt.Sprintf(
				"evaluation ceiling %d from the announced base price caps the bid range", evaluationCeiling))
		}
	}
	if highRatio < lowRatio {
		highRatio = lowRatio
	}
	optimalRatio := clamp(bidRatio, lowRatio, highRatio)

	optimalBidPrice := int64(math.Round(float64(input.EstimatedPrice) * optimalRatio))
	priceRange := PriceRange{
		Low:  int64(math.Round(float64(input.EstimatedPrice) * lowRatio)),
		High: int64(math.Round(float64(input.EstimatedPrice) * highRatio)),
	}

	qualification := e.scorer.Score(input, bidRatio, floorRatio)
	reasoning = append(reasoning, fmt.Sprintf(
		"qualification score %.1f/100 (pass threshold %.0f, margin %+.1f)",
		qualification.Score.Total, qualification.PassThreshold, qualification.MarginToPass))

	winProbability := e.model.Compute(bidRatio, assessment, competition, floorRatio)
	reasoning = append(reasoning, fmt.Sprintf("estimated win probability %.1f%%", winProbability*100))

	scenarios := e.scenarios.Generate(input, bidRatio, assessment, competition, floorRatio)

	recommendation, risk, verdict := e.decide(bidRatio, floorRatio, winProbability, qualification)
	reasoning = append(reasoning, verdict)
	if len(qualification.Recommendations) > 0 {
		reasoning = append(reasoning, "first improvement lever: "+qualification.Recommendations[0])
	}

	return &PredictionResult{
		BidID:     input.BidID,
		BidTitle:  input.BidTitle,
		ProductID: input.ProductID,
		Strategy:  input.Strategy,

		WinProbability:  winProbability,
		OptimalBidPrice: optimalBidPrice,
		OptimalBidRatio: round4(optimalRatio),
		BidPriceRange:   priceRange,
		FloorRatio:      floorRatio,
		FloorPrice:      floorPrice,

		EvaluationCeiling: evaluationCeiling,

		Qualification: qualification,
		Assessment:    assessment,
		Competition:   competition,
		Scenarios:     scenarios,

		Recommendation:     recommendation,
		RiskLevel:          risk,
		ConfidenceLevel:    e.confidenceLevel(assessment, competition),
		UncertaintyFactors: uncertainty,
		Reasoning:          reasoning,
	}, nil
}

// normalize validates hard requirements and fills the documented defaults.
func (e *Engine) normalize(input PredictionInput) (PredictionInput, error) {
	if input.BidID == "" {
		return input, &ValidationError{Field: "bidId", Message: "must not be empty"}
	}
	if input.EstimatedPrice <= 0 {
		return input, &ValidationError{Field: "estimatedPrice", Message: "must be positive"}
	}

	switch input.BidType {
	case BidTypeGoods, BidTypeConstruction, BidTypeService:
	case "":
		input.BidType = BidTypeGoods
	default:
		return input, &ValidationError{Field: "bidType", Message: fmt.Sprintf("unknown bid type %q", input.BidType)}
	}

	if input.ContractType == "" {
		input.ContractType = ContractQualificationReview
	}

	switch input.Strategy {
	case StrategyAggressive, StrategyBalanced, StrategyConservative:
	case "":
		input.Strategy = StrategyBalanced
	default:
		return input, &ValidationError{Field: "strategy", Message: fmt.Sprintf("unknown strategy %q", input.Strategy)}
	}

	if input.ProposedPrice < 0 {
		return input, &ValidationError{Field: "proposedPrice", Message: "must not be negative"}
	}

	return input, nil
}

// targetRatio picks the bid ratio for the chosen risk posture, or the
// caller's proposed price when one is given.
func (e *Engine) targetRatio(input PredictionInput, floorRatio float64, level CompetitionLevel) (ratio float64, proposed bool) {
	if input.ProposedPrice > 0 {
		return float64(input.ProposedPrice) / float64(input.EstimatedPrice), true
	}

	switch input.Strategy {
	case StrategyAggressive:
		return floorRatio + e.cfg.AggressiveMargin, false
	case StrategyConservative:
		return e.cfg.CeilingRatio, false
	default:
		return e.model.CompetitorMean(floorRatio, level), false
	}
}

// decide walks the recommendation ladder. Statutory disqualification and a
// failed review are outcomes, not errors.
func (e *Engine) decide(bidRatio, floorRatio, winProbability float64, qualification QualificationResult) (Recommendation, RiskLevel, string) {
	switch {
	case bidRatio < floorRatio:
		return RecommendSkip, RiskHigh, fmt.Sprintf(
			"bid ratio %.2f%% is below the statutory floor %.3f%%: automatic disqualification", bidRatio*100, floorRatio*100)
	case !qualification.WillPass:
		return RecommendSkip, RiskHigh, fmt.Sprintf(
			"qualification review fails by %.1f points: do not bid", -qualification.MarginToPass)
	case winProbability >= e.cfg.StrongBidProbability && qualification.MarginToPass >= e.cfg.ComfortMargin:
		return RecommendStrongBid, RiskLow, "high win probability with a comfortable review margin: bid aggressively"
	case winProbability >= e.cfg.BidProbability:
		return RecommendBid, RiskMedium, "adequate win probability: bidding recommended"
	case winProbability >= e.cfg.ReviewProbability:
		return RecommendReview, RiskMedium, "low win probability: review before committing"
	case qualification.MarginToPass >= e.cfg.ComfortMargin:
		return RecommendReview, RiskMedium, "win probability is slim but the review margin is solid: participation optional"
	default:
		return RecommendSkip, RiskHigh, "negligible win probability and a thin review margin: skip"
	}
}

func (e *Engine) confidenceLevel(assessment AssessmentAnalysis, competition CompetitionAnalysis) ConfidenceLevel {
	avg := (assessment.Confidence + competition.Confidence) / 2
	switch {
	case avg >= e.cfg.HighConfidenceAt:
		return ConfidenceHigh
	case avg >= e.cfg.MediumConfidenceAt:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// CacheKeyParts returns the identity fields under which a result may be
// memoized; determinism makes equal inputs interchangeable.
func CacheKeyParts(input PredictionInput) (bidID, productID string, strategy Strategy) {
	return input.BidID, input.ProductID, input.Strategy
}
