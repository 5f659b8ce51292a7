package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FinWiseHQ/FinWise/internal/pkg/entitlements"
	"github.com/FinWiseHQ/FinWise/internal/pkg/session"
	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session into a request-scoped
// UserContext for every request. Controllers read it through the
// usercontext package instead of touching the session directly.
func UserContextMiddleware(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyIsAuthenticated, false)
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		// On error: treat as anonymous
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyIsAuthenticated, false)
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{IsLoggedIn: false})
		c.Locals(usercontext.KeyIsAuthenticated, false)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	identityID := session.GetSessionValue(c, usercontext.KeyIdentityID)

	// Plan is cached in the session; the subscription page refreshes
	// it from the identity provider.
	plan := session.GetSessionValue(c, usercontext.KeyUserPlan)
	if plan == "" {
		plan = string(entitlements.PlanFree)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID,
		IdentityID: identityID,
		Username:   username,
		IsLoggedIn: true,
		Plan:       plan,
	}
	c.Locals(usercontext.KeyUserContext, userCtx)
	c.Locals(usercontext.KeyIsAuthenticated, true)

	return c.Next()
}
