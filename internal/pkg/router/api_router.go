package router

import (
	"github.com/FinWiseHQ/FinWise/app/controllers"
	"github.com/FinWiseHQ/FinWise/internal/pkg/billing"
	"github.com/FinWiseHQ/FinWise/internal/pkg/cache"
	"github.com/FinWiseHQ/FinWise/internal/pkg/constants"
	"github.com/FinWiseHQ/FinWise/internal/pkg/database"
	"github.com/FinWiseHQ/FinWise/internal/pkg/env"
	"github.com/FinWiseHQ/FinWise/internal/pkg/identity"
	"github.com/FinWiseHQ/FinWise/internal/pkg/middleware"
	"github.com/FinWiseHQ/FinWise/internal/pkg/ratelimit"
	"github.com/FinWiseHQ/FinWise/internal/pkg/reports"

	"github.com/gofiber/fiber/v2"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	webhookController := controllers.NewWebhookController(
		newWebhookLimiter(),
		billing.NewDispatcher(identity.NewClerkClientFromEnv(), billing.NewStripeClientFromEnv()),
		newWebhookRecorder(),
	)
	reportController := controllers.NewReportController(reports.Unavailable{})

	app.Post(constants.StripeWebhookRoute, webhookController.HandleStripeWebhook)
	app.Post(constants.ReportsRoute, middleware.RequireAPISessionAuth, reportController.HandleGenerateReport)
}

// newWebhookLimiter selects the rate limit backend. Redis keeps the
// window shared across replicas; the in-process limiter needs no
// extra infrastructure.
func newWebhookLimiter() ratelimit.Limiter {
	if env.GetEnv("RATE_LIMIT_BACKEND", "") == "redis" {
		return ratelimit.NewRedisLimiter(cache.GetClient(), ratelimit.DefaultWindow, ratelimit.DefaultLimit)
	}
	return ratelimit.NewMemoryLimiter(ratelimit.DefaultWindow, ratelimit.DefaultLimit)
}

func newWebhookRecorder() controllers.WebhookRecorder {
	db := database.GetDB()
	if db == nil {
		return nil
	}
	return billing.NewServiceFromDB(db)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
