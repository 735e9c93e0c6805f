package engine

import (
	"math"
	"sort"
)

// Sanity bounds for historical rate samples; anything outside is a data
// entry error, not evidence.
const (
	minUsableRate = 0.5
	maxUsableRate = 1.5
)

// AssessmentEstimator estimates the hidden ratio between the announced
// estimated price and the true evaluation ceiling.
type AssessmentEstimator struct {
	cfg Config
}

func NewAssessmentEstimator(cfg Config) *AssessmentEstimator {
	return &AssessmentEstimator{cfg: cfg}
}

// Estimate computes the assessment rate from historical samples when
// available, blending with the statutory default band when the history is
// thin. Missing history degrades confidence, it never fails the call.
func (e *AssessmentEstimator) Estimate(input PredictionInput) AssessmentAnalysis {
	band := e.defaultBand(input.BidType)
	rates := e.usableRates(input)

	if len(rates) == 0 {
		return AssessmentAnalysis{
			Rate:        band.Center,
			StdDev:      (band.High - band.Low) / 4,
			Confidence:  e.cfg.DefaultConfidence,
			Range:       RateRange{Low: band.Low, High: band.High},
			SampleCount: 0,
			Source:      SourceStatutoryDefault,
		}
	}

	mean := trimmedMean(rates, e.cfg.TrimFraction)
	std := stdDev(rates, mean)
	confidence := math.Min(1, float64(len(rates))/float64(e.cfg.SampleWindow))
	low := percentile(rates, 0.10)
	high := percentile(rates, 0.90)

	if len(rates) >= e.cfg.MinHistoricalSample {
		return AssessmentAnalysis{
			Rate:        round4(mean),
			StdDev:      round4(std),
			Confidence:  confidence,
			Range:       RateRange{Low: round4(low), High: round4(high)},
			SampleCount: len(rates),
			Source:      SourceHistorical,
		}
	}

	// Thin history: blend the sample mean with the statutory default in
	// proportion to the sample count.
	w := float64(len(rates)) / float64(e.cfg.MinHistoricalSample)
	blended := w*mean + (1-w)*band.Center
	return AssessmentAnalysis{
		Rate:        round4(blended),
		StdDev:      round4(math.Max(std, (band.High-band.Low)/4)),
		Confidence:  math.Max(e.cfg.DefaultConfidence, confidence),
		Range: RateRange{
			Low:  round4(math.Min(low, band.Low)),
			High: round4(math.Max(high, band.High)),
		},
		SampleCount: len(rates),
		Source:      SourceHybrid,
	}
}

// usableRates picks the most recent window of sane samples, preferring
// samples from the tender's own organization when any exist.
func (e *AssessmentEstimator) usableRates(input PredictionInput) []float64 {
	samples := make([]AssessmentSample, 0, len(input.AssessmentSamples))
	for _, s := range input.AssessmentSamples {
		r := s.Rate()
		if r > minUsableRate && r < maxUsableRate {
			samples = append(samples, s)
		}
	}

	var orgSamples []AssessmentSample
	for _, s := range samples {
		if orgMatches(s.Organization, input.Organization) {
			orgSamples = append(orgSamples, s)
		}
	}
	if len(orgSamples) > 0 {
		samples = orgSamples
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].AwardedAt.After(samples[j].AwardedAt)
	})
	if len(samples) > e.cfg.SampleWindow {
		samples = samples[:e.cfg.SampleWindow]
	}

	rates := make([]float64, len(samples))
	for i, s := range samples {
		rates[i] = s.Rate()
	}
	return rates
}

func (e *AssessmentEstimator) defaultBand(bidType BidType) RateBand {
	if band, ok := e.cfg.DefaultBands[bidType]; ok {
		return band
	}
	return e.cfg.DefaultBands[BidTypeGoods]
}

// trimmedMean drops the configured fraction from each end before averaging.
func trimmedMean(values []float64, trim float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	drop := int(float64(len(sorted)) * trim)
	trimmed := sorted[drop : len(sorted)-drop]
	if len(trimmed) == 0 {
		trimmed = sorted
	}

	var sum float64
	for _, v := range trimmed {
		sum += v
	}
	return sum / float64(len(trimmed))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// percentile interpolates linearly between order statistics.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
