package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/FinWiseHQ/FinWise/internal/pkg/entitlements"
	"github.com/FinWiseHQ/FinWise/internal/pkg/identity"
	"github.com/FinWiseHQ/FinWise/internal/pkg/session"
	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

const identityLookupTimeout = 10 * time.Second

// SubscriptionController shows the user's current entitlement as the
// identity provider sees it.
type SubscriptionController struct {
	store identity.Store
}

func NewSubscriptionController(store identity.Store) *SubscriptionController {
	return &SubscriptionController{store: store}
}

// HandleSubscriptionPage reads the live entitlement through the
// identity store's user lookup and refreshes the session plan cache.
func (ctl *SubscriptionController) HandleSubscriptionPage(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if userCtx.IdentityID == "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "identity_not_linked",
			"message": "No identity provider account linked",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), identityLookupTimeout)
	defer cancel()

	user, err := ctl.store.GetUser(ctx, userCtx.IdentityID)
	if err != nil {
		log.Printf("subscription: identity lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "entitlement_lookup_failed"})
	}

	plan := entitlements.Normalize(user.SubscriptionPlan)
	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, string(plan))

	return c.JSON(fiber.Map{
		"plan":             plan,
		"has_premium":      plan == entitlements.PlanPremium,
		"billing_customer": user.StripeCustomerID != "",
	})
}
