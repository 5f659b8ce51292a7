package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in web session; redirects to /login if
// missing, preserving the requested path as the return target. This is
// a second layer behind the access gateway's own redirect so that
// route groups stay independently protected.
func RequireAuth(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyIsAuthenticated)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Redirect("/login?redirect_url="+url.QueryEscape(c.Path()), fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and
// returns JSON 401 instead of a redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	v := c.Locals(usercontext.KeyIsAuthenticated)
	loggedIn := false
	if b, ok := v.(bool); ok {
		loggedIn = b
	}
	if !loggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}
