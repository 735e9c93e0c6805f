package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{Logger: zap.NewNop()}))
	app.Post("/api/v1/predictions", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Post("/api/v1/assessments", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func post(t *testing.T, app *fiber.App, path, contentType, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestValidationAcceptsWellFormedPrediction(t *testing.T) {
	app := testApp()
	status := post(t, app, "/api/v1/predictions", "application/json",
		`{"bidId":"20260815001-00","bidTitle":"초음파유량계 구매","estimatedPrice":450000000}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestValidationRejectsMissingBidID(t *testing.T) {
	app := testApp()
	status := post(t, app, "/api/v1/predictions", "application/json",
		`{"bidTitle":"x","estimatedPrice":100}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestValidationRejectsNonPositivePrice(t *testing.T) {
	app := testApp()
	status := post(t, app, "/api/v1/predictions", "application/json",
		`{"bidId":"B-1","estimatedPrice":0}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestValidationRejectsScriptInTitle(t *testing.T) {
	app := testApp()
	status := post(t, app, "/api/v1/predictions", "application/json",
		`{"bidId":"B-1","bidTitle":"<script>alert(1)</script>","estimatedPrice":100}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestValidationRejectsUnsupportedContentType(t *testing.T) {
	app := testApp()
	status := post(t, app, "/api/v1/predictions", "text/plain", `{"bidId":"B-1"}`)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)
}

func TestValidationRejectsAssessmentWithoutOrganization(t *testing.T) {
	app := testApp()
	status := post(t, app, "/api/v1/assessments", "application/json",
		`{"basePrice":100,"estimatedPrice":90}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
