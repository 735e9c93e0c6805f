package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/prediction"
	"github.com/bidflow/backend/internal/storage/models"
	"github.com/bidflow/backend/pkg/logger"
)

type DeliveryHandler struct {
	service *prediction.Service
}

func NewDeliveryHandler(service *prediction.Service) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
	}
}

// HandleRecord registers a past contract under a bidder profile. Prediction
// requests carrying that profile as tenantId pick these up automatically.
func (h *DeliveryHandler) HandleRecord(c *fiber.Ctx) error {
	var req struct {
		ProfileID    string    `json:"profileId"`
		Organization string    `json:"organization"`
		ProductName  string    `json:"productName"`
		Category     string    `json:"category"`
		Amount       int64     `json:"amount"`
		CompletedAt  time.Time `json:"completedAt"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse delivery request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.ProfileID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "profileId is required",
		})
	}
	if req.ProductName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "productName is required",
		})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount must be positive",
		})
	}
	if req.CompletedAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "completedAt is required",
		})
	}

	record := &models.DeliveryRecordRow{
		ProfileID:    req.ProfileID,
		Organization: req.Organization,
		ProductName:  req.ProductName,
		Category:     req.Category,
		Amount:       req.Amount,
		CompletedAt:  req.CompletedAt,
	}

	if err := h.service.RecordDelivery(c.Context(), record); err != nil {
		logger.Error("Failed to record delivery", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record delivery",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": record.ID,
	})
}
