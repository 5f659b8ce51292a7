package billing

import (
	"encoding/json"
	"fmt"
)

// EventKind discriminates the event kinds the gateway acts on. Every
// successfully verified delivery maps onto exactly one kind; types the
// gateway does not understand map to KindUnrecognized and are
// acknowledged without effect.
type EventKind string

const (
	KindInvoicePaid         EventKind = "invoice.paid"
	KindSubscriptionDeleted EventKind = "customer.subscription.deleted"
	KindUnrecognized        EventKind = "unrecognized"
)

// InvoicePaid carries the fields the paid-invoice handler needs. The
// opaque user identifier lives in the subscription metadata and must
// pass a minimum-length sanity check before it is trusted.
type InvoicePaid struct {
	CustomerID     string `validate:"required"`
	SubscriptionID string `validate:"required"`
	OpaqueUserID   string `validate:"required,min=10"`
}

// SubscriptionDeleted identifies the provider subscription being torn
// down; the owning user is recovered via a live provider lookup.
type SubscriptionDeleted struct {
	SubscriptionID string `validate:"required"`
}

// Event is a verified, typed provider event. The variant pointer
// matching Kind is non-nil; unrecognized events carry none. An Event
// is immutable once parsed and consumed by exactly one dispatch.
type Event struct {
	ID   string
	Type string
	Kind EventKind

	InvoicePaid         *InvoicePaid
	SubscriptionDeleted *SubscriptionDeleted
}

type rawEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			// invoice.paid
			Customer            string `json:"customer"`
			Subscription        string `json:"subscription"`
			SubscriptionDetails struct {
				Metadata map[string]string `json:"metadata"`
			} `json:"subscription_details"`

			// customer.subscription.deleted
			ObjectID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// MetadataKeyOpaqueUserID is the provider metadata key holding the
// identity provider's opaque user identifier.
const MetadataKeyOpaqueUserID = "clerk_user_id"

// ParseEvent turns verified payload bytes into a typed Event. It only
// fails on malformed JSON; missing event fields are the dispatcher's
// concern so that a recognized event with bad data is rejected, not
// silently dropped.
func ParseEvent(payload []byte) (*Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}

	ev := &Event{ID: raw.ID, Type: raw.Type}
	switch raw.Type {
	case string(KindInvoicePaid):
		ev.Kind = KindInvoicePaid
		ev.InvoicePaid = &InvoicePaid{
			CustomerID:     raw.Data.Object.Customer,
			SubscriptionID: raw.Data.Object.Subscription,
			OpaqueUserID:   raw.Data.Object.SubscriptionDetails.Metadata[MetadataKeyOpaqueUserID],
		}
	case string(KindSubscriptionDeleted):
		ev.Kind = KindSubscriptionDeleted
		ev.SubscriptionDeleted = &SubscriptionDeleted{
			SubscriptionID: raw.Data.Object.ObjectID,
		}
	default:
		ev.Kind = KindUnrecognized
	}
	return ev, nil
}
