package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/FinWiseHQ/FinWise/internal/pkg/entitlements"
	"github.com/FinWiseHQ/FinWise/internal/pkg/reports"
	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

const reportTimeout = 30 * time.Second

type reportRequest struct {
	Month string `json:"month" validate:"required,len=2,numeric"`
	Year  string `json:"year" validate:"required,len=4,numeric"`
}

// ReportController gates AI report generation behind the premium plan
// and delegates the generation itself to an external collaborator.
type ReportController struct {
	generator reports.Generator
}

func NewReportController(generator reports.Generator) *ReportController {
	return &ReportController{generator: generator}
}

func (ctl *ReportController) HandleGenerateReport(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !entitlements.AllowsAIReports(entitlements.Normalize(userCtx.Plan)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "premium_required",
			"message": "AI reports require a premium plan",
		})
	}

	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}
	if err := validator.New().Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := ctl.generator.Generate(ctx, userCtx.IdentityID, req.Month, req.Year)
	if err != nil {
		if errors.Is(err, reports.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "reports_unavailable"})
		}
		log.Printf("reports: generation failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_generation_failed"})
	}

	return c.JSON(fiber.Map{
		"id":     uuid.NewString(),
		"report": report,
	})
}
