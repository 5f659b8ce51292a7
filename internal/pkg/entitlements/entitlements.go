package entitlements

import "strings"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Normalize maps an arbitrary plan string onto a known Plan; anything
// unrecognized falls back to free.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPremium):
		return PlanPremium
	default:
		return PlanFree
	}
}

// AllowsAIReports returns whether a plan may generate AI finance reports.
func AllowsAIReports(plan Plan) bool {
	return plan == PlanPremium
}
