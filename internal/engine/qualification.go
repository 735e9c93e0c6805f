package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Sub-score caps for the 100-point goods qualification review.
const (
	deliveryScoreCap    = 25.0
	techScoreCap        = 5.0
	financialScoreCap   = 15.0
	priceScoreCap       = 50.0
	reliabilityScoreCap = 5.0
)

// Matching-category weights for delivery records.
const (
	weightIdentical = 1.0
	weightSimilar   = 0.7
	weightRelated   = 0.3
)

// Credit-rating points, goods qualification review table.
var creditRatingScores = map[string]float64{
	"AAA": 15.0, "AA+": 14.5, "AA0": 14.0, "AA-": 13.5,
	"A+": 13.0, "A0": 12.5, "A-": 12.0,
	"BBB+": 11.5, "BBB0": 11.0, "BBB-": 10.5,
	"BB+": 10.0, "BB0": 9.5, "BB-": 9.0,
	"B+": 8.0, "B0": 7.0, "B-": 6.0,
	"CCC": 5.0, "CC": 4.0, "C": 3.0, "D": 1.0,
}

const defaultCreditScore = 11.0

// QualificationScorer computes the statutory 100-point review score.
type QualificationScorer struct {
	cfg Config
}

func NewQualificationScorer(cfg Config) *QualificationScorer {
	return &QualificationScorer{cfg: cfg}
}

// Score evaluates the bidder at the given proposed bid ratio.
func (s *QualificationScorer) Score(input PredictionInput, bidRatio, floorRatio float64) QualificationResult {
	delivery := s.deliveryScore(input)
	tech := s.techScore(input)
	financial, _ := CreditScore(input.CreditRating)
	price := s.priceScore(bidRatio, floorRatio)
	reliability := s.reliabilityScore(input)

	score := composeScore(delivery, tech, financial, price, reliability)
	margin := score.Total - s.cfg.PassThreshold

	return QualificationResult{
		Score:           score,
		PassThreshold:   s.cfg.PassThreshold,
		WillPass:        score.Total >= s.cfg.PassThreshold,
		MarginToPass:    round1(margin),
		Recommendations: s.recommendations(score, input, bidRatio, floorRatio),
	}
}

func composeScore(delivery, tech, financial, price, reliability float64) QualificationScore {
	total := delivery + tech + financial + price + reliability
	return QualificationScore{
		DeliveryRecord:  round1(delivery),
		TechCapability:  round1(tech),
		FinancialStatus: round1(financial),
		PriceScore:      round1(price),
		Reliability:     round1(reliability),
		Total:           round1(clamp(total, 0, 100)),
	}
}

// CreditScore maps an ordinal credit grade to review points. Unknown grades
// fall back to the mid-table default; the second return reports whether the
// grade was recognized.
func CreditScore(rating string) (float64, bool) {
	if score, ok := creditRatingScores[strings.ToUpper(strings.TrimSpace(rating))]; ok {
		return score, true
	}
	return defaultCreditScore, false
}

// deliveryScore sums matching-category delivery amounts over the lookback
// window, recency-weighted, and converts the amount-to-price ratio through
// the statutory step table.
func (s *QualificationScorer) deliveryScore(input PredictionInput) float64 {
	now := s.cfg.now(input)
	cutoff := now.AddDate(-s.cfg.LookbackYears, 0, 0)
	bidKeywords := ExtractKeywords(input.BidTitle)

	var weighted float64
	for _, record := range input.DeliveryRecords {
		if record.CompletedAt.Before(cutoff) || record.Amount <= 0 {
			continue
		}

		recordKeywords := record.Keywords
		if len(recordKeywords) == 0 {
			recordKeywords = ExtractKeywords(record.ProductName)
		}
		if record.Category != "" {
			recordKeywords = append(recordKeywords, ExtractKeywords(record.Category)...)
		}

		var matchWeight float64
		switch ratio := matchRatio(bidKeywords, recordKeywords); {
		case ratio >= 0.7:
			matchWeight = weightIdentical
		case ratio >= 0.4:
			matchWeight = weightSimilar
		case ratio >= 0.2:
			matchWeight = weightRelated
		default:
			continue
		}

		weighted += float64(record.Amount) * matchWeight * s.recencyWeight(now, record)
	}

	if weighted <= 0 || input.EstimatedPrice <= 0 {
		return 0
	}

	ratio := weighted / float64(input.EstimatedPrice)
	switch {
	case ratio >= 2.0:
		return 25
	case ratio >= 1.5:
		return 23
	case ratio >= 1.2:
		return 21
	case ratio >= 1.0:
		return 19
	case ratio >= 0.8:
		return 17
	case ratio >= 0.6:
		return 15
	case ratio >= 0.4:
		return 12
	case ratio >= 0.2:
		return 9
	case ratio >= 0.1:
		return 6
	default:
		return math.Max(0, ratio*60)
	}
}

// recencyWeight keeps records from the last year at full weight and decays
// linearly to 0.4 at the window edge.
func (s *QualificationScorer) recencyWeight(now time.Time, record DeliveryRecord) float64 {
	ageYears := now.Sub(record.CompletedAt).Hours() / (24 * 365.25)
	if ageYears <= 1 {
		return 1.0
	}
	span := float64(s.cfg.LookbackYears) - 1
	if span <= 0 {
		return 1.0
	}
	return clamp(1.0-0.6*(ageYears-1)/span, 0.4, 1.0)
}

// techScore: ISO certifications cap at 1.5, patents at 1.5, product and
// incentive certifications at 1.0, technical staff at 1.0, total at 5.
func (s *QualificationScorer) techScore(input PredictionInput) float64 {
	var iso, patent, cert float64
	for _, name := range input.Certifications {
		switch classifyCertification(name) {
		case certISO9001:
			iso += 1.0
		case certISO14001:
			iso += 0.3
		case certISO45001:
			iso += 0.2
		case certISO27001:
			iso += 0.3
		case certPatentInvention:
			patent += 0.8
		case certPatentUtility:
			patent += 0.4
		case certPatentDesign:
			patent += 0.3
		case certProductMark:
			cert += 0.3
		case certNewTech:
			cert += 0.8
		case certInnoBiz:
			cert += 0.5
		case certMainBiz:
			cert += 0.4
		}
	}
	iso = math.Min(1.5, iso)
	patent = math.Min(1.5, patent)
	cert = math.Min(1.0, cert)

	var staff float64
	switch n := input.TechStaffCount; {
	case n >= 10:
		staff = 1.0
	case n >= 5:
		staff = 0.7
	case n >= 3:
		staff = 0.5
	case n >= 1:
		staff = 0.3
	}

	return math.Min(techScoreCap, iso+patent+cert+staff)
}

// priceScore follows the statutory formula 50 × floor/bidRatio: bids at the
// floor earn the full 50, higher bids taper off. Below-floor bids are void
// and score zero.
func (s *QualificationScorer) priceScore(bidRatio, floorRatio float64) float64 {
	if bidRatio < floorRatio || bidRatio <= 0 {
		return 0
	}
	return clamp(priceScoreCap*floorRatio/bidRatio, 0, priceScoreCap)
}

// reliabilityScore applies sanction deductions from the penalty window and
// incentive bonuses, bounded to ±5 so it never dominates the review.
func (s *QualificationScorer) reliabilityScore(input PredictionInput) float64 {
	now := s.cfg.now(input)
	cutoff := now.AddDate(-s.cfg.PenaltyWindowYears, 0, 0)

	var penalty float64
	for _, p := range input.Penalties {
		if !p.Date.Before(cutoff) {
			penalty += p.Points
		}
	}

	var bonus float64
	for _, record := range input.DeliveryRecords {
		if orgMatches(record.Organization, input.Organization) {
			bonus += 1.0
			break
		}
	}
	for _, name := range input.Certifications {
		switch classifyCertification(name) {
		case certInnoBiz:
			bonus += 0.5
		case certMainBiz:
			bonus += 0.3
		case certVenture:
			bonus += 0.2
		case certSocialEnterprise:
			bonus += 0.3
		}
	}

	return clamp(bonus-penalty, -reliabilityScoreCap, reliabilityScoreCap)
}

func orgMatches(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// recommendations ranks improvement suggestions by a sensitivity pass:
// the total is recomputed with each sub-score hypothetically maximized and
// suggestions are ordered by the resulting marginal gain.
func (s *QualificationScorer) recommendations(score QualificationScore, input PredictionInput, bidRatio, floorRatio float64) []string {
	type lever struct {
		gain    float64
		message string
	}

	levers := []lever{
		{
			gain: deliveryScoreCap - score.DeliveryRecord,
			message: fmt.Sprintf(
				"secure additional same-category delivery records (up to +%.1f pts)",
				deliveryScoreCap-score.DeliveryRecord),
		},
		{
			gain: techScoreCap - score.TechCapability,
			message: fmt.Sprintf(
				"add technical certifications such as ISO 9001 or a registered patent (up to +%.1f pts)",
				techScoreCap-score.TechCapability),
		},
		{
			gain: financialScoreCap - score.FinancialStatus,
			message: fmt.Sprintf(
				"raise the credit rating tier from %s (up to +%.1f pts)",
				displayRating(input.CreditRating), financialScoreCap-score.FinancialStatus),
		},
		{
			gain: priceScoreCap - score.PriceScore,
			message: fmt.Sprintf(
				"move the bid ratio from %.1f%% toward the %.3f%% floor (up to +%.1f pts)",
				bidRatio*100, floorRatio*100, priceScoreCap-score.PriceScore),
		},
		{
			gain: reliabilityScoreCap - score.Reliability,
			message: fmt.Sprintf(
				"clear sanction history and add incentive certifications (up to +%.1f pts)",
				reliabilityScoreCap-score.Reliability),
		},
	}

	sort.SliceStable(levers, func(i, j int) bool { return levers[i].gain > levers[j].gain })

	var out []string
	for _, l := range levers {
		if l.gain >= 0.5 {
			out = append(out, l.message)
		}
	}
	return out
}

func displayRating(rating string) string {
	if strings.TrimSpace(rating) == "" {
		return "unrated"
	}
	return rating
}

type certificationClass int

const (
	certOther certificationClass = iota
	certISO9001
	certISO14001
	certISO45001
	certISO27001
	certPatentInvention
	certPatentUtility
	certPatentDesign
	certProductMark
	certNewTech
	certInnoBiz
	certMainBiz
	certVenture
	certSocialEnterprise
)

// classifyCertification detects the certification type from a free-form name,
// Korean or English.
func classifyCertification(name string) certificationClass {
	n := strings.ToLower(name)
	compact := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(n)

	switch {
	case strings.Contains(compact, "iso9001"):
		return certISO9001
	case strings.Contains(compact, "iso14001"):
		return certISO14001
	case strings.Contains(compact, "iso45001"):
		return certISO45001
	case strings.Contains(compact, "iso27001"):
		return certISO27001
	case strings.Contains(n, "실용신안") || strings.Contains(compact, "utilitypatent") || strings.Contains(compact, "patentutility"):
		return certPatentUtility
	case strings.Contains(n, "디자인") && strings.Contains(n, "특허"),
		strings.Contains(compact, "designpatent"), strings.Contains(compact, "patentdesign"):
		return certPatentDesign
	case strings.Contains(n, "특허") || strings.Contains(compact, "patent"):
		return certPatentInvention
	case strings.Contains(n, "신기술") || strings.Contains(n, "신제품") || compact == "netp" || compact == "nep":
		return certNewTech
	case strings.Contains(n, "이노비즈") || strings.Contains(compact, "innobiz"):
		return certInnoBiz
	case strings.Contains(n, "메인비즈") || strings.Contains(compact, "mainbiz"):
		return certMainBiz
	case strings.Contains(n, "벤처") || strings.Contains(compact, "venture"):
		return certVenture
	case strings.Contains(n, "사회적기업") || strings.Contains(compact, "socialenterprise"):
		return certSocialEnterprise
	case compact == "kc" || compact == "ce" || compact == "ul" || compact == "ccc":
		return certProductMark
	default:
		return certOther
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
