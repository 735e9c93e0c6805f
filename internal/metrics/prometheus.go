package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bidflow_prediction_duration_seconds",
			Help:    "Prediction pipeline duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"strategy"},
	)

	PredictionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidflow_prediction_total",
			Help: "Total predictions by recommendation and status",
		},
		[]string{"recommendation", "status"},
	)

	WinProbability = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bidflow_win_probability",
			Help:    "Distribution of predicted win probabilities",
			Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 0.75, 0.95, 1.0},
		},
	)

	QualificationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bidflow_qualification_score",
			Help:    "Distribution of qualification review totals",
			Buckets: []float64{0, 50, 60, 70, 80, 85, 90, 95, 100},
		},
	)

	AssessmentSampleCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bidflow_assessment_sample_count",
			Help:    "Historical assessment samples available per prediction",
			Buckets: []float64{0, 1, 2, 5, 10, 15},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidflow_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidflow_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	StreamBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bidflow_stream_batch_size",
			Help:    "Tenders per WebSocket batch request",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		},
	)

	AssessmentsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bidflow_assessments_recorded_total",
			Help: "Total award results recorded",
		},
	)
)

func Init() {
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(PredictionTotal)
	prometheus.MustRegister(WinProbability)
	prometheus.MustRegister(QualificationScore)
	prometheus.MustRegister(AssessmentSampleCount)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(StreamBatchSize)
	prometheus.MustRegister(AssessmentsRecorded)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
