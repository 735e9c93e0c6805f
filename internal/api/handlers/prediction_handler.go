package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/engine"
	"github.com/bidflow/backend/internal/prediction"
	"github.com/bidflow/backend/pkg/logger"
)

type PredictionHandler struct {
	service *prediction.Service
}

func NewPredictionHandler(service *prediction.Service) *PredictionHandler {
	return &PredictionHandler{
		service: service,
	}
}

func (h *PredictionHandler) HandlePredict(c *fiber.Ctx) error {
	var input engine.PredictionInput

	if err := c.BodyParser(&input); err != nil {
		logger.Error("Failed to parse prediction request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.service.Predict(c.Context(), input)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": verr.Error(),
				"field": verr.Field,
			})
		}
		logger.Error("Failed to generate prediction", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate prediction",
		})
	}

	return c.JSON(result)
}

func (h *PredictionHandler) HandleHistory(c *fiber.Ctx) error {
	bidID := c.Query("bidId")
	limit := c.QueryInt("limit", 20)

	records, err := h.service.History(c.Context(), bidID, limit)
	if err != nil {
		logger.Error("Failed to load prediction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load prediction history",
		})
	}

	history := make([]fiber.Map, 0, len(records))
	for _, r := range records {
		history = append(history, fiber.Map{
			"id":             r.ID,
			"bidId":          r.BidID,
			"bidTitle":       r.BidTitle,
			"strategy":       r.Strategy,
			"recommendation": r.Recommendation,
			"riskLevel":      r.RiskLevel,
			"winProbability": r.WinProbability,
			"optimalPrice":   r.OptimalPrice,
			"floorRatio":     r.FloorRatio,
			"latencyMs":      r.LatencyMS,
			"createdAt":      r.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}
