package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/prediction"
	"github.com/bidflow/backend/internal/storage/models"
	"github.com/bidflow/backend/pkg/logger"
)

type AssessmentHandler struct {
	service *prediction.Service
}

func NewAssessmentHandler(service *prediction.Service) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
	}
}

// HandleRecord stores an actual award result so later predictions for the
// same organization start from real history instead of the default band.
func (h *AssessmentHandler) HandleRecord(c *fiber.Ctx) error {
	var req struct {
		BidID          string    `json:"bidId"`
		Organization   string    `json:"organization"`
		Category       string    `json:"category"`
		BasePrice      int64     `json:"basePrice"`
		EstimatedPrice int64     `json:"estimatedPrice"`
		AwardPrice     int64     `json:"awardPrice"`
		OpenedAt       time.Time `json:"openedAt"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse assessment request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Organization == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "organization is required",
		})
	}
	if req.BasePrice <= 0 || req.EstimatedPrice <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "basePrice and estimatedPrice must be positive",
		})
	}
	if req.OpenedAt.IsZero() {
		req.OpenedAt = time.Now().UTC()
	}

	sample := &models.AssessmentSample{
		BidID:          req.BidID,
		Organization:   req.Organization,
		Category:       req.Category,
		BasePrice:      req.BasePrice,
		EstimatedPrice: req.EstimatedPrice,
		AwardPrice:     req.AwardPrice,
		OpenedAt:       req.OpenedAt,
	}

	if err := h.service.RecordAssessment(c.Context(), sample); err != nil {
		logger.Error("Failed to record assessment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record assessment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         sample.ID,
		"awardRatio": sample.AwardRatio,
	})
}
