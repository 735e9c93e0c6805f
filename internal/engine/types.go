package engine

import (
	"fmt"
	"time"
)

type BidType string

const (
	BidTypeGoods        BidType = "goods"
	BidTypeConstruction BidType = "construction"
	BidTypeService      BidType = "service"
)

type ContractType string

const (
	ContractQualificationReview ContractType = "qualification_review"
	ContractSMECompetition      ContractType = "sme_competition"
	ContractNegotiation         ContractType = "negotiation"
	ContractLowestPrice         ContractType = "lowest_price"
)

type Strategy string

const (
	StrategyAggressive   Strategy = "aggressive"
	StrategyBalanced     Strategy = "balanced"
	StrategyConservative Strategy = "conservative"
)

type Recommendation string

const (
	RecommendStrongBid Recommendation = "STRONG_BID"
	RecommendBid       Recommendation = "BID"
	RecommendReview    Recommendation = "REVIEW"
	RecommendSkip      Recommendation = "SKIP"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

type CompetitionLevel string

const (
	CompetitionLow      CompetitionLevel = "low"
	CompetitionModerate CompetitionLevel = "moderate"
	CompetitionHigh     CompetitionLevel = "high"
)

type AssessmentSource string

const (
	SourceHistorical       AssessmentSource = "historical"
	SourceStatutoryDefault AssessmentSource = "statutory_default"
	SourceHybrid           AssessmentSource = "hybrid"
)

type PenaltyType string

const (
	PenaltyDeliveryDelay  PenaltyType = "delivery_delay"
	PenaltyQualityIssue   PenaltyType = "quality_issue"
	PenaltyContractCancel PenaltyType = "contract_cancel"
)

// DeliveryRecord is a past delivery used as qualification evidence.
// Amounts are KRW.
type DeliveryRecord struct {
	Organization string    `json:"organization"`
	ProductName  string    `json:"productName"`
	Amount       int64     `json:"amount"`
	CompletedAt  time.Time `json:"completedAt"`
	Category     string    `json:"category"`
	Keywords     []string  `json:"keywords,omitempty"`
}

// Penalty is a sanction entry affecting the reliability adjustment.
type Penalty struct {
	Type   PenaltyType `json:"type"`
	Date   time.Time   `json:"date"`
	Points float64     `json:"points"`
}

// AssessmentSample is one historical award outcome for an organization,
// used to estimate its assessment-rate pattern.
type AssessmentSample struct {
	Organization       string    `json:"organization"`
	Category           string    `json:"category"`
	EstimatedPrice     int64     `json:"estimatedPrice"`
	FinalContractPrice int64     `json:"finalContractPrice"`
	AwardedAt          time.Time `json:"awardedAt"`
}

// Rate returns finalContractPrice / estimatedPrice, or 0 when the sample
// is unusable.
func (s AssessmentSample) Rate() float64 {
	if s.EstimatedPrice <= 0 {
		return 0
	}
	return float64(s.FinalContractPrice) / float64(s.EstimatedPrice)
}

// PredictionInput is the full input record for one prediction. Historical
// tables are supplied by the caller; the engine never fetches anything.
type PredictionInput struct {
	BidID          string       `json:"bidId"`
	BidTitle       string       `json:"bidTitle"`
	Organization   string       `json:"organization"`
	EstimatedPrice int64        `json:"estimatedPrice"`
	BasePrice      int64        `json:"basePrice,omitempty"`
	BidType        BidType      `json:"bidType"`
	ContractType   ContractType `json:"contractType"`
	Deadline       time.Time    `json:"deadline"`
	TenantID       string       `json:"tenantId"`
	ProductID      string       `json:"productId"`

	CreditRating    string           `json:"creditRating"`
	DeliveryRecords []DeliveryRecord `json:"deliveryRecords,omitempty"`
	Certifications  []string         `json:"certifications,omitempty"`
	TechStaffCount  int              `json:"techStaffCount"`
	Penalties       []Penalty        `json:"penalties,omitempty"`

	ProposedPrice int64    `json:"proposedPrice,omitempty"`
	Strategy      Strategy `json:"strategy"`
	IsUrgent      bool     `json:"isUrgent"`

	AssessmentSamples []AssessmentSample `json:"assessmentSamples,omitempty"`

	// Now anchors all date arithmetic (lookback windows, deadline checks)
	// so identical input always produces identical output. Zero means the
	// engine's configured reference time.
	Now time.Time `json:"now,omitempty"`
}

// QualificationScore holds the five statutory sub-scores. Total is always
// recomputed from the parts, never set independently.
type QualificationScore struct {
	DeliveryRecord  float64 `json:"deliveryRecord"`
	TechCapability  float64 `json:"techCapability"`
	FinancialStatus float64 `json:"financialStatus"`
	PriceScore      float64 `json:"priceScore"`
	Reliability     float64 `json:"reliability"`
	Total           float64 `json:"total"`
}

// QualificationResult is the score plus the pass verdict and the
// sensitivity-ranked improvement suggestions.
type QualificationResult struct {
	Score           QualificationScore `json:"score"`
	PassThreshold   float64            `json:"passThreshold"`
	WillPass        bool               `json:"willPass"`
	MarginToPass    float64            `json:"marginToPass"`
	Recommendations []string           `json:"recommendations"`
}

type RateRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// AssessmentAnalysis estimates the ratio between the announced estimated
// price and the true evaluation ceiling.
type AssessmentAnalysis struct {
	Rate        float64          `json:"rate"`
	StdDev      float64          `json:"stdDev"`
	Confidence  float64          `json:"confidence"`
	Range       RateRange        `json:"range"`
	SampleCount int              `json:"sampleCount"`
	Source      AssessmentSource `json:"source"`
}

type CompetitorRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type CompetitionAnalysis struct {
	ExpectedCompetitors int              `json:"expectedCompetitors"`
	CompetitionLevel    CompetitionLevel `json:"competitionLevel"`
	Distribution        CompetitorRange  `json:"distribution"`
	BidDensity          float64          `json:"bidDensity"`
	Confidence          float64          `json:"confidence"`
	UrgencyMultiplier   float64          `json:"urgencyMultiplier"`
}

type Scenario struct {
	Name           string  `json:"name"`
	AssessmentRate float64 `json:"assessmentRate"`
	Competitors    int     `json:"competitors"`
	BidRatio       float64 `json:"bidRatio"`
	BidPrice       int64   `json:"bidPrice"`
	WinProbability float64 `json:"winProbability"`
	ExpectedRank   int     `json:"expectedRank"`
}

type Scenarios struct {
	Optimistic  Scenario `json:"optimistic"`
	Base        Scenario `json:"base"`
	Pessimistic Scenario `json:"pessimistic"`
}

type PriceRange struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// PredictionResult aggregates every analysis for one tender. Created fresh
// per call and never mutated afterwards.
type PredictionResult struct {
	BidID     string   `json:"bidId"`
	BidTitle  string   `json:"bidTitle"`
	ProductID string   `json:"productId"`
	Strategy  Strategy `json:"strategy"`

	WinProbability  float64    `json:"winProbability"`
	OptimalBidPrice int64      `json:"optimalBidPrice"`
	OptimalBidRatio float64    `json:"optimalBidRatio"`
	BidPriceRange   PriceRange `json:"bidPriceRange"`
	FloorRatio      float64    `json:"floorRatio"`
	FloorPrice      int64      `json:"floorPrice"`

	// EvaluationCeiling is basePrice × assessment rate, present only when
	// the notice announced a base price.
	EvaluationCeiling int64 `json:"evaluationCeiling,omitempty"`

	Qualification QualificationResult `json:"qualification"`
	Assessment    AssessmentAnalysis  `json:"assessment"`
	Competition   CompetitionAnalysis `json:"competition"`
	Scenarios     Scenarios           `json:"scenarios"`

	Recommendation     Recommendation  `json:"recommendation"`
	RiskLevel          RiskLevel       `json:"riskLevel"`
	ConfidenceLevel    ConfidenceLevel `json:"confidenceLevel"`
	UncertaintyFactors []string        `json:"uncertaintyFactors"`
	Reasoning          []string        `json:"reasoning"`
}

// ValidationError reports an unusable input field. Only true input problems
// surface as errors; missing supporting data degrades confidence instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}
