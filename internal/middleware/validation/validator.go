package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	sqlInjectionPattern = regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter|exec|script|javascript|onerror|onload)`)
	xssPattern          = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)
)

type Config struct {
	MaxTitleLength      int
	MaxBatchSize        int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxTitleLength == 0 {
		cfg.MaxTitleLength = 500
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 100
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PUT" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		path := c.Path()

		if strings.Contains(path, "/api/v1/predictions") && c.Method() == "POST" {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			bidID, ok := req["bidId"].(string)
			if !ok || strings.TrimSpace(bidID) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "bidId is required and must be a string",
				})
			}

			if title, ok := req["bidTitle"].(string); ok {
				if len(title) > cfg.MaxTitleLength {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "bidTitle exceeds maximum length",
					})
				}
				if suspicious(title) {
					cfg.Logger.Warn("Suspicious bid title rejected",
						zap.String("ip", c.IP()),
						zap.String("bid_id", bidID),
					)
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid bid title content",
					})
				}
			}

			if price, ok := req["estimatedPrice"].(float64); ok && price <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "estimatedPrice must be positive",
				})
			}
		}

		if strings.Contains(path, "/api/v1/assessments") && c.Method() == "POST" {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			org, ok := req["organization"].(string)
			if !ok || strings.TrimSpace(org) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "organization is required and must be a string",
				})
			}
			if suspicious(org) {
				cfg.Logger.Warn("Suspicious organization rejected",
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid organization content",
				})
			}
		}

		return c.Next()
	}
}

func suspicious(input string) bool {
	return sqlInjectionPattern.MatchString(input) || xssPattern.MatchString(input)
}
