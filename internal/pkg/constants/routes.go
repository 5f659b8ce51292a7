package constants

// Static route constants
const (
	PublicRoute        = "/"
	LoginRoute         = "/login"
	LogoutRoute        = "/logout"
	TransactionsRoute  = "/transactions"
	SubscriptionRoute  = "/subscription"
	ReportsRoute       = "/api/reports"
	StripeWebhookRoute = "/api/webhooks/stripe"
)
