package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FinWiseHQ/FinWise/internal/pkg/entitlements"
	"github.com/FinWiseHQ/FinWise/internal/pkg/identity"
)

// DispatchStatus classifies the outcome of handling one event.
type DispatchStatus int

const (
	// StatusApplied covers both a successful state transition and an
	// acknowledged unrecognized event.
	StatusApplied DispatchStatus = iota
	// StatusInvalidData marks a recognized event with missing or
	// malformed required fields. The gateway does not retry these;
	// redelivery is the provider's job.
	StatusInvalidData
	// StatusInternalError marks an external lookup or update failure.
	// Safe for provider redelivery since every handler performs
	// absolute sets.
	StatusInternalError
)

// SubscriptionRetriever is the provider lookup the deletion handler
// depends on.
type SubscriptionRetriever interface {
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*StripeSubscription, error)
}

// Dispatcher routes a verified event to its handler. Handlers are
// idempotent: they write complete entitlement states, so replaying a
// delivery converges to the same store state.
type Dispatcher struct {
	store    identity.Store
	provider SubscriptionRetriever
	validate *validator.Validate
}

func NewDispatcher(store identity.Store, provider SubscriptionRetriever) *Dispatcher {
	return &Dispatcher{
		store:    store,
		provider: provider,
		validate: validator.New(),
	}
}

// Dispatch matches the event kind exhaustively. The returned error is
// the detailed cause for internal logging.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (DispatchStatus, error) {
	switch ev.Kind {
	case KindInvoicePaid:
		return d.handleInvoicePaid(ctx, ev.InvoicePaid)
	case KindSubscriptionDeleted:
		return d.handleSubscriptionDeleted(ctx, ev.SubscriptionDeleted)
	case KindUnrecognized:
		// Verified but not acted on; acknowledge so the provider does
		// not disable the whole webhook delivery.
		return StatusApplied, nil
	default:
		return StatusInternalError, fmt.Errorf("unhandled event kind %q", ev.Kind)
	}
}

func (d *Dispatcher) handleInvoicePaid(ctx context.Context, in *InvoicePaid) (DispatchStatus, error) {
	if in == nil {
		return StatusInvalidData, fmt.Errorf("invoice.paid event without payload")
	}
	if err := d.validate.Struct(in); err != nil {
		return StatusInvalidData, fmt.Errorf("invoice.paid event data invalid: %w", err)
	}

	if _, err := d.store.GetUser(ctx, in.OpaqueUserID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return StatusInvalidData, fmt.Errorf("no identity user for %q", in.OpaqueUserID)
		}
		return StatusInternalError, fmt.Errorf("identity lookup failed: %w", err)
	}

	plan := string(entitlements.PlanPremium)
	update := identity.EntitlementUpdate{
		StripeCustomerID:     &in.CustomerID,
		StripeSubscriptionID: &in.SubscriptionID,
		SubscriptionPlan:     &plan,
	}
	if err := d.store.UpdateEntitlement(ctx, in.OpaqueUserID, update); err != nil {
		return StatusInternalError, fmt.Errorf("entitlement update failed: %w", err)
	}
	return StatusApplied, nil
}

func (d *Dispatcher) handleSubscriptionDeleted(ctx context.Context, in *SubscriptionDeleted) (DispatchStatus, error) {
	if in == nil {
		return StatusInvalidData, fmt.Errorf("subscription deletion event without payload")
	}
	if err := d.validate.Struct(in); err != nil {
		return StatusInvalidData, fmt.Errorf("subscription deletion event data invalid: %w", err)
	}

	// The deletion event does not carry the user; recover it from the
	// live provider record.
	sub, err := d.provider.RetrieveSubscription(ctx, in.SubscriptionID)
	if err != nil {
		return StatusInternalError, fmt.Errorf("provider subscription lookup failed: %w", err)
	}

	opaqueID := strings.TrimSpace(sub.Metadata[MetadataKeyOpaqueUserID])
	if len(opaqueID) < 10 {
		return StatusInvalidData, fmt.Errorf("subscription %s has no usable %s metadata", in.SubscriptionID, MetadataKeyOpaqueUserID)
	}

	// Downgrade to free: all three entitlement fields nulled.
	if err := d.store.UpdateEntitlement(ctx, opaqueID, identity.EntitlementUpdate{}); err != nil {
		return StatusInternalError, fmt.Errorf("entitlement update failed: %w", err)
	}
	return StatusApplied, nil
}
