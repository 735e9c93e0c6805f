package engine

import (
	"math"
	"strings"
	"time"
)

type productCategory string

const (
	categoryFlowMeter     productCategory = "flow_meter"
	categoryHeatMeter     productCategory = "heat_meter"
	categoryWaterQuality  productCategory = "water_quality"
	categoryPressureGauge productCategory = "pressure_gauge"
	categoryLevelSensor   productCategory = "level_sensor"
	categoryValve         productCategory = "valve"
	categoryPump          productCategory = "pump"
	categoryPipeFitting   productCategory = "pipe_fitting"
	categoryElectrical    productCategory = "electrical"
	categoryConstruction  productCategory = "construction"
	categoryITSoftware    productCategory = "it_software"
	categoryOther         productCategory = "other"
)

// Historical eligible-bidder density per product category.
var categoryBaseCompetitors = map[productCategory]float64{
	categoryFlowMeter:     12,
	categoryHeatMeter:     8,
	categoryWaterQuality:  10,
	categoryPressureGauge: 15,
	categoryLevelSensor:   11,
	categoryValve:         18,
	categoryPump:          16,
	categoryPipeFitting:   22,
	categoryElectrical:    20,
	categoryConstruction:  25,
	categoryITSoftware:    14,
	categoryOther:         15,
}

type categoryRule struct {
	category productCategory
	terms    []string
}

// Match order matters: more specific terms first.
var categoryRules = []categoryRule{
	{categoryFlowMeter, []string{"유량계", "flow meter", "flowmeter"}},
	{categoryHeatMeter, []string{"열량계", "heat meter", "btu"}},
	{categoryWaterQuality, []string{"수질", "water quality"}},
	{categoryPressureGauge, []string{"압력", "pressure"}},
	{categoryLevelSensor, []string{"레벨", "level"}},
	{categoryValve, []string{"밸브", "valve"}},
	{categoryPump, []string{"펌프", "pump"}},
	{categoryPipeFitting, []string{"배관", "pipe", "fitting"}},
	{categoryElectrical, []string{"전기", "전력", "electrical"}},
	{categoryConstruction, []string{"건설", "공사", "construction"}},
	{categoryITSoftware, []string{"소프트웨어", "시스템", "software"}},
}

// Organization popularity multipliers: sought-after buyers draw more bidders.
var orgPopularity = []struct {
	name   string
	factor float64
}{
	{"조달청", 1.3},
	{"서울시", 1.4},
	{"한국수자원공사", 1.2},
	{"한국지역난방공사", 1.1},
	{"한국농어촌공사", 1.0},
	{"한국환경공단", 1.1},
	{"한국도로공사", 1.2},
	{"한국철도공사", 1.2},
	{"인천국제공항공사", 1.3},
}

const (
	orgFactorCentral = 1.2
	orgFactorPublic  = 1.1
	orgFactorLocal   = 1.0
)

// Fiscal-calendar participation patterns by deadline month.
var monthlySeasonality = map[time.Month]float64{
	time.January: 0.90, time.February: 0.95, time.March: 1.00,
	time.April: 1.00, time.May: 1.00, time.June: 1.05,
	time.July: 1.00, time.August: 0.95, time.September: 1.05,
	time.October: 1.10, time.November: 1.00, time.December: 0.85,
}

var quarterlySeasonality = [4]float64{0.95, 1.00, 1.05, 0.90}

var dayOfWeekFactors = map[time.Weekday]float64{
	time.Sunday: 1.05, time.Monday: 1.0, time.Tuesday: 1.0,
	time.Wednesday: 1.0, time.Thursday: 0.95, time.Friday: 0.90,
	time.Saturday: 1.00,
}

func priceRangeFactor(price int64) float64 {
	switch {
	case price < 50_000_000:
		return 0.7
	case price < 100_000_000:
		return 0.85
	case price < 500_000_000:
		return 1.0
	case price < 1_000_000_000:
		return 1.15
	case price < 5_000_000_000:
		return 1.3
	default:
		return 1.5
	}
}

// CompetitionEstimator predicts how many rivals will actually bid.
type CompetitionEstimator struct {
	cfg Config
}

func NewCompetitionEstimator(cfg Config) *CompetitionEstimator {
	return &CompetitionEstimator{cfg: cfg}
}

// Estimate derives the expected competitor count from category density,
// buyer popularity, fiscal seasonality, budget size and deadline placement.
// Urgency is an explicit multiplier: short-deadline tenders suppress
// participation.
func (e *CompetitionEstimator) Estimate(input PredictionInput) CompetitionAnalysis {
	category := detectCategory(input.BidTitle)
	base := categoryBaseCompetitors[category]

	orgFactor := organizationPopularity(input.Organization)
	seasonal := seasonalFactor(input.Deadline)
	priceFactor := priceRangeFactor(input.EstimatedPrice)
	dayFactor := dayOfWeekFactors[input.Deadline.Weekday()]

	raw := base * orgFactor * seasonal * priceFactor * dayFactor
	expected := int(math.Round(math.Max(float64(e.cfg.ExpectedFloor), raw)))

	urgency := 1.0
	if input.IsUrgent {
		urgency = e.cfg.UrgencyMultiplier
		suppressed := int(math.Round(math.Max(float64(e.cfg.ExpectedFloor), raw*urgency)))
		// Rounding must not erase the suppression: an urgent tender draws
		// strictly fewer bidders whenever there is room above the floor.
		if suppressed >= expected && expected > e.cfg.ExpectedFloor {
			suppressed = expected - 1
		}
		expected = suppressed
	}

	spread := float64(expected) * e.cfg.CompetitorSpread
	dist := CompetitorRange{
		Min: maxInt(e.cfg.DistributionFloor, int(math.Round(float64(expected)-2*spread))),
		Max: int(math.Round(float64(expected) + 2*spread)),
	}

	level := e.classify(expected)

	pool := base * e.cfg.EligiblePoolMultiplier
	density := 0.0
	if pool > 0 {
		density = clamp(float64(expected)/pool, 0, 1)
	}

	confidence := 0.6
	if category != categoryOther {
		confidence += 0.1
	}
	if organizationKnown(input.Organization) {
		confidence += 0.1
	}
	confidence = math.Min(0.85, confidence)

	return CompetitionAnalysis{
		ExpectedCompetitors: expected,
		CompetitionLevel:    level,
		Distribution:        dist,
		BidDensity:          round4(density),
		Confidence:          confidence,
		UrgencyMultiplier:   urgency,
	}
}

// classify is a tertile split against category norms.
func (e *CompetitionEstimator) classify(expected int) CompetitionLevel {
	switch {
	case expected >= e.cfg.HighCompetitorsAt:
		return CompetitionHigh
	case expected >= e.cfg.ModerateCompetitorsAt:
		return CompetitionModerate
	default:
		return CompetitionLow
	}
}

func detectCategory(title string) productCategory {
	lower := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.category
			}
		}
	}
	return categoryOther
}

func organizationPopularity(organization string) float64 {
	for _, entry := range orgPopularity {
		if strings.Contains(organization, entry.name) {
			return entry.factor
		}
	}
	switch {
	case strings.Contains(organization, "조달청") || strings.Contains(organization, "관세청"):
		return orgFactorCentral
	case strings.Contains(organization, "공사") || strings.Contains(organization, "공단"):
		return orgFactorPublic
	default:
		return orgFactorLocal
	}
}

func organizationKnown(organization string) bool {
	for _, entry := range orgPopularity {
		if strings.Contains(organization, entry.name) {
			return true
		}
	}
	return false
}

func seasonalFactor(deadline time.Time) float64 {
	monthly := monthlySeasonality[deadline.Month()]
	quarterly := quarterlySeasonality[(int(deadline.Month())-1)/3]
	return (monthly + quarterly) / 2
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
