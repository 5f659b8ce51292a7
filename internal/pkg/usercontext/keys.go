package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyUserContext     = "USER_CONTEXT"
	KeyUserID          = "user_id"
	KeyIdentityID      = "identity_id"
	KeyUsername        = "username"
	KeyUserPlan        = "user_plan"
	KeyIsAuthenticated = "is_authenticated"
)
