package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

// HandleTransactionsPage is thin glue: transaction storage and CRUD
// live outside this system. The route exists because it belongs to
// the access gateway's protected set.
func HandleTransactionsPage(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return c.JSON(fiber.Map{
		"user_id":      userCtx.UserID,
		"plan":         userCtx.Plan,
		"transactions": []fiber.Map{},
	})
}
