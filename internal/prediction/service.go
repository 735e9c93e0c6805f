package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/cache/redis"
	"github.com/bidflow/backend/internal/engine"
	"github.com/bidflow/backend/internal/metrics"
	"github.com/bidflow/backend/internal/storage/models"
	"github.com/bidflow/backend/internal/storage/sqlite"
	"github.com/bidflow/backend/pkg/logger"
	"github.com/bidflow/backend/pkg/retry"
	"github.com/bidflow/backend/pkg/utils"
)

// Service orchestrates one prediction: cache lookup, historical sample
// loading, the engine run, persistence and metrics. The cache and the
// history write are best-effort; only the engine decides success.
type Service struct {
	engine *engine.Engine
	db     *sqlite.Client
	cache  *redis.Client
}

func NewService(eng *engine.Engine, db *sqlite.Client, cache *redis.Client) *Service {
	return &Service{
		engine: eng,
		db:     db,
		cache:  cache,
	}
}

// Predict runs the pipeline for one tender. Stored assessment samples and
// delivery records supplement whatever the caller supplied inline.
func (s *Service) Predict(ctx context.Context, input engine.PredictionInput) (*engine.PredictionResult, error) {
	startTime := time.Now()

	input = s.enrich(ctx, input)

	key, err := s.cacheKey(input)
	if err == nil && s.cache != nil {
		var cached engine.PredictionResult
		hit, cacheErr := s.cache.GetPrediction(ctx, key, &cached)
		if cacheErr != nil {
			logger.Warn("Prediction cache lookup failed", zap.Error(cacheErr))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("prediction").Inc()
			logger.Debug("Prediction served from cache", zap.String("bid_id", input.BidID))
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("prediction").Inc()
	}

	result, err := s.engine.GeneratePrediction(input)
	if err != nil {
		metrics.PredictionTotal.WithLabelValues("invalid", "error").Inc()
		return nil, err
	}

	latency := time.Since(startTime)
	metrics.PredictionDuration.WithLabelValues(string(result.Strategy)).Observe(latency.Seconds())
	metrics.PredictionTotal.WithLabelValues(string(result.Recommendation), "ok").Inc()
	metrics.WinProbability.Observe(result.WinProbability)
	metrics.QualificationScore.Observe(result.Qualification.Score.Total)
	metrics.AssessmentSampleCount.Observe(float64(result.Assessment.SampleCount))

	logger.Info("Prediction generated",
		zap.String("bid_id", result.BidID),
		zap.String("recommendation", string(result.Recommendation)),
		zap.Float64("win_probability", result.WinProbability),
		zap.Duration("latency", latency),
	)

	s.persist(ctx, input, result, latency)

	if s.cache != nil && key != "" {
		if err := s.cache.SetPrediction(ctx, key, result); err != nil {
			logger.Warn("Failed to cache prediction", zap.Error(err))
		}
	}

	return result, nil
}

// RecordAssessment stores an award outcome and invalidates cached
// predictions for the tender it belongs to.
func (s *Service) RecordAssessment(ctx context.Context, sample *models.AssessmentSample) error {
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = time.Now().UTC()
	}
	if sample.AwardRatio == 0 && sample.BasePrice > 0 {
		sample.AwardRatio = float64(sample.EstimatedPrice) / float64(sample.BasePrice)
	}

	err := retry.Do(ctx, retry.Config{Logger: logger.Log}, func() error {
		return s.db.SaveAssessmentSample(ctx, sample)
	})
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}

	metrics.AssessmentsRecorded.Inc()

	if s.cache != nil && sample.BidID != "" {
		if err := s.cache.InvalidateBid(ctx, sample.BidID); err != nil {
			logger.Warn("Failed to invalidate prediction cache", zap.Error(err))
		}
	}

	logger.Info("Assessment sample recorded",
		zap.String("organization", sample.Organization),
		zap.Float64("award_ratio", sample.AwardRatio),
	)
	return nil
}

// RecordDelivery stores a past contract for a bidder profile so predictions
// for that profile can score delivery history without inline records.
func (s *Service) RecordDelivery(ctx context.Context, record *models.DeliveryRecordRow) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := retry.Do(ctx, retry.Config{Logger: logger.Log}, func() error {
		return s.db.SaveDeliveryRecord(ctx, record)
	})
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	logger.Info("Delivery record stored",
		zap.String("profile_id", record.ProfileID),
		zap.String("product", record.ProductName),
	)
	return nil
}

// History lists persisted predictions.
func (s *Service) History(ctx context.Context, bidID string, limit int) ([]models.PredictionRecord, error) {
	return s.db.PredictionHistory(ctx, bidID, limit)
}

// enrich merges stored samples and delivery records into the input. Inline
// data from the caller wins; storage only fills gaps.
func (s *Service) enrich(ctx context.Context, input engine.PredictionInput) engine.PredictionInput {
	if s.db == nil {
		return input
	}

	if len(input.AssessmentSamples) == 0 && input.Organization != "" {
		stored, err := s.db.AssessmentSamples(ctx, input.Organization, "", 50)
		if err != nil {
			logger.Warn("Failed to load assessment samples", zap.Error(err))
		}
		for _, row := range stored {
			// The stored rate divides the revealed estimate by the notice
			// base price; the sample type carries the same pair.
			input.AssessmentSamples = append(input.AssessmentSamples, engine.AssessmentSample{
				Organization:       row.Organization,
				Category:           row.Category,
				EstimatedPrice:     row.BasePrice,
				FinalContractPrice: row.EstimatedPrice,
				AwardedAt:          row.OpenedAt,
			})
		}
	}

	if len(input.DeliveryRecords) == 0 && input.TenantID != "" {
		stored, err := s.db.DeliveryRecords(ctx, input.TenantID)
		if err != nil {
			logger.Warn("Failed to load delivery records", zap.Error(err))
		}
		for _, row := range stored {
			input.DeliveryRecords = append(input.DeliveryRecords, engine.DeliveryRecord{
				Organization: row.Organization,
				ProductName:  row.ProductName,
				Category:     row.Category,
				Amount:       row.Amount,
				CompletedAt:  row.CompletedAt,
			})
		}
	}

	return input
}

func (s *Service) persist(ctx context.Context, input engine.PredictionInput, result *engine.PredictionResult, latency time.Duration) {
	if s.db == nil {
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal prediction for storage", zap.Error(err))
		return
	}

	record := &models.PredictionRecord{
		ID:             uuid.New().String(),
		BidID:          result.BidID,
		BidTitle:       result.BidTitle,
		ProductID:      result.ProductID,
		Strategy:       string(result.Strategy),
		Recommendation: string(result.Recommendation),
		RiskLevel:      string(result.RiskLevel),
		WinProbability: result.WinProbability,
		OptimalPrice:   result.OptimalBidPrice,
		FloorRatio:     result.FloorRatio,
		ResultJSON:     string(resultJSON),
		LatencyMS:      int(latency.Milliseconds()),
		CreatedAt:      time.Now().UTC(),
	}

	err = retry.Do(ctx, retry.Config{Logger: logger.Log}, func() error {
		return s.db.SavePrediction(ctx, record)
	})
	if err != nil {
		logger.Error("Failed to persist prediction", zap.Error(err))
	}
}

func (s *Service) cacheKey(input engine.PredictionInput) (string, error) {
	inputHash, err := utils.HashJSON(input)
	if err != nil {
		return "", err
	}
	bidID, productID, strategy := engine.CacheKeyParts(input)
	return redis.PredictionKey(bidID, productID, string(strategy), inputHash), nil
}
