package router

import (
	"github.com/FinWiseHQ/FinWise/app/controllers"
	"github.com/FinWiseHQ/FinWise/internal/pkg/constants"
	"github.com/FinWiseHQ/FinWise/internal/pkg/identity"
	"github.com/FinWiseHQ/FinWise/internal/pkg/middleware"
	"github.com/FinWiseHQ/FinWise/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// UserContext first, then the access gateway which reads it.
	app.Use(middleware.UserContextMiddleware)
	app.Use(middleware.AccessGateway)

	h.registerPublicRoutes(app)
	h.registerProtectedRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.PublicRoute, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "finwise", "status": "ok"})
	})
	app.Get(constants.LoginRoute, controllers.HandleLoginPage)
	app.Post(constants.LoginRoute, controllers.HandleLogin)
	app.Post(constants.LogoutRoute, controllers.HandleLogout)
}

func (h HttpRouter) registerProtectedRoutes(app *fiber.App) {
	subscriptionController := controllers.NewSubscriptionController(identity.NewClerkClientFromEnv())

	app.Get(constants.TransactionsRoute, middleware.RequireAuth, controllers.HandleTransactionsPage)
	app.Get(constants.SubscriptionRoute, middleware.RequireAuth, subscriptionController.HandleSubscriptionPage)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
