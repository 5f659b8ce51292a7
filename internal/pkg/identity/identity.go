package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the identity provider has no user for
// the given opaque identifier.
var ErrNotFound = errors.New("identity: user not found")

// User is the slice of an identity-provider user record this system
// reads: the opaque identifier plus the entitlement attributes.
type User struct {
	ID                   string
	SubscriptionPlan     string
	StripeCustomerID     string
	StripeSubscriptionID string
}

// EntitlementUpdate is the absolute entitlement state written to the
// identity provider for a user. Nil fields clear the stored value;
// handlers always send full sets, never increments, so replaying an
// update converges to the same state.
type EntitlementUpdate struct {
	StripeCustomerID     *string
	StripeSubscriptionID *string
	SubscriptionPlan     *string
}

// Store is the entitlement-store contract the webhook dispatcher
// consumes. Both calls are remote and fallible; callers bound them
// with a context timeout and surface failures instead of retrying.
type Store interface {
	GetUser(ctx context.Context, opaqueID string) (*User, error)
	UpdateEntitlement(ctx context.Context, opaqueID string, update EntitlementUpdate) error
}
