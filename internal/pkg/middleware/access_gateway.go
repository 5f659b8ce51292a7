package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/FinWiseHQ/FinWise/internal/pkg/billing"
	"github.com/FinWiseHQ/FinWise/internal/pkg/constants"
	"github.com/FinWiseHQ/FinWise/internal/pkg/usercontext"
)

// maxUserAgentLength caps the user-agent header; anything longer is
// treated as a malformed or hostile client.
const maxUserAgentLength = 500

// protectedPrefixes require a logged-in session. The webhook path is
// listed here and in publicPrefixes: it is publicly reachable, but
// guarded by signature verification instead of session auth.
var protectedPrefixes = []string{
	constants.TransactionsRoute,
	constants.SubscriptionRoute,
	constants.StripeWebhookRoute,
}

var publicPrefixes = []string{
	constants.LoginRoute,
	constants.StripeWebhookRoute,
}

// AccessGateway is the edge filter ahead of all application routing:
// it classifies routes, rejects malformed clients, redirects
// unauthenticated callers off protected pages, requires a signature
// header on the webhook path, and stamps baseline security headers on
// every response regardless of outcome.
func AccessGateway(c *fiber.Ctx) error {
	setSecurityHeaders(c)

	ua := c.Get(fiber.HeaderUserAgent)
	if ua == "" || len(ua) > maxUserAgentLength {
		return c.Status(fiber.StatusBadRequest).SendString("Bad Request")
	}

	path := c.Path()

	// Defense in depth: the webhook transport validator checks the
	// signature header again behind this filter.
	if hasPrefix(path, constants.StripeWebhookRoute) {
		if strings.TrimSpace(c.Get(billing.SignatureHeader)) == "" {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}
		return c.Next()
	}

	if isProtectedRoute(path) && !usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.LoginRoute+"?redirect_url="+url.QueryEscape(path), fiber.StatusSeeOther)
	}

	return c.Next()
}

func isProtectedRoute(path string) bool {
	for _, prefix := range publicPrefixes {
		if hasPrefix(path, prefix) {
			return false
		}
	}
	for _, prefix := range protectedPrefixes {
		if hasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func hasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func setSecurityHeaders(c *fiber.Ctx) {
	// Clickjacking
	c.Set("X-Frame-Options", "DENY")
	// MIME type sniffing
	c.Set("X-Content-Type-Options", "nosniff")
	// Legacy XSS filter
	c.Set("X-XSS-Protection", "1; mode=block")
	// Referrer policy
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	// Restrictive CSP allowing only the billing provider's script and API hosts
	c.Set("Content-Security-Policy",
		"default-src 'self'; script-src 'self' https://js.stripe.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self' https://api.stripe.com; frame-src https://js.stripe.com")
}
