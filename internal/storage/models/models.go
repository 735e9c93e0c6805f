package models

import "time"

// AssessmentSample is one recorded award outcome: the ratio between the
// final estimated price and the base price the organization announced.
type AssessmentSample struct {
	ID             string
	BidID          string
	Organization   string
	Category       string
	BasePrice      int64
	EstimatedPrice int64
	AwardPrice     int64
	AwardRatio     float64
	OpenedAt       time.Time
	CreatedAt      time.Time
}

// PredictionRecord is the persisted outcome of one engine run.
type PredictionRecord struct {
	ID             string
	BidID          string
	BidTitle       string
	ProductID      string
	Strategy       string
	Recommendation string
	RiskLevel      string
	WinProbability float64
	OptimalPrice   int64
	FloorRatio     float64
	ResultJSON     string
	LatencyMS      int
	CreatedAt      time.Time
}

// DeliveryRecordRow is a stored past contract for a bidder profile.
type DeliveryRecordRow struct {
	ID           string
	ProfileID    string
	Organization string
	ProductName  string
	Category     string
	Amount       int64
	CompletedAt  time.Time
	CreatedAt    time.Time
}
