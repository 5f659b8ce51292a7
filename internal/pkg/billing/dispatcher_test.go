package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinWiseHQ/FinWise/internal/pkg/identity"
)

// fakeStore is an in-memory entitlement store capturing updates.
type fakeStore struct {
	users       map[string]*identity.User
	updates     []identity.EntitlementUpdate
	getErr      error
	updateErr   error
	updateCalls int
}

func newFakeStore(ids ...string) *fakeStore {
	users := make(map[string]*identity.User)
	for _, id := range ids {
		users[id] = &identity.User{ID: id}
	}
	return &fakeStore{users: users}
}

func (s *fakeStore) GetUser(_ context.Context, opaqueID string) (*identity.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	user, ok := s.users[opaqueID]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return user, nil
}

func (s *fakeStore) UpdateEntitlement(_ context.Context, opaqueID string, update identity.EntitlementUpdate) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	user, ok := s.users[opaqueID]
	if !ok {
		user = &identity.User{ID: opaqueID}
		s.users[opaqueID] = user
	}
	user.SubscriptionPlan = deref(update.SubscriptionPlan)
	user.StripeCustomerID = deref(update.StripeCustomerID)
	user.StripeSubscriptionID = deref(update.StripeSubscriptionID)
	s.updates = append(s.updates, update)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type fakeRetriever struct {
	sub *StripeSubscription
	err error
}

func (r *fakeRetriever) RetrieveSubscription(context.Context, string) (*StripeSubscription, error) {
	return r.sub, r.err
}

func paidEvent(opaqueID string) *Event {
	return &Event{
		ID:   "evt_1",
		Type: "invoice.paid",
		Kind: KindInvoicePaid,
		InvoicePaid: &InvoicePaid{
			CustomerID:     "cus_1",
			SubscriptionID: "sub_1",
			OpaqueUserID:   opaqueID,
		},
	}
}

func TestDispatchInvoicePaidUpgradesUser(t *testing.T) {
	store := newFakeStore("user_2abcdefgh")
	d := NewDispatcher(store, &fakeRetriever{})

	status, err := d.Dispatch(context.Background(), paidEvent("user_2abcdefgh"))
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, status)

	user := store.users["user_2abcdefgh"]
	assert.Equal(t, "premium", user.SubscriptionPlan)
	assert.Equal(t, "cus_1", user.StripeCustomerID)
	assert.Equal(t, "sub_1", user.StripeSubscriptionID)
}

func TestDispatchInvoicePaidIsIdempotent(t *testing.T) {
	store := newFakeStore("user_2abcdefgh")
	d := NewDispatcher(store, &fakeRetriever{})
	ev := paidEvent("user_2abcdefgh")

	_, err := d.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	once := *store.users["user_2abcdefgh"]

	status, err := d.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, status)
	assert.Equal(t, once, *store.users["user_2abcdefgh"],
		"replaying a delivery must converge to the same entitlement state")
}

func TestDispatchInvoicePaidRejectsMissingOpaqueID(t *testing.T) {
	store := newFakeStore()
	d := NewDispatcher(store, &fakeRetriever{})

	status, err := d.Dispatch(context.Background(), paidEvent(""))
	assert.Equal(t, StatusInvalidData, status)
	assert.Error(t, err)
	assert.Zero(t, store.updateCalls, "invalid events must not mutate the store")
}

func TestDispatchInvoicePaidRejectsShortOpaqueID(t *testing.T) {
	store := newFakeStore()
	d := NewDispatcher(store, &fakeRetriever{})

	status, _ := d.Dispatch(context.Background(), paidEvent("user_1"))
	assert.Equal(t, StatusInvalidData, status)
	assert.Zero(t, store.updateCalls)
}

func TestDispatchInvoicePaidUnknownUser(t *testing.T) {
	store := newFakeStore() // empty
	d := NewDispatcher(store, &fakeRetriever{})

	status, _ := d.Dispatch(context.Background(), paidEvent("user_2abcdefgh"))
	assert.Equal(t, StatusInvalidData, status)
	assert.Zero(t, store.updateCalls)
}

func TestDispatchInvoicePaidStoreFailure(t *testing.T) {
	store := newFakeStore("user_2abcdefgh")
	store.updateErr = errors.New("identity api: 502")
	d := NewDispatcher(store, &fakeRetriever{})

	status, err := d.Dispatch(context.Background(), paidEvent("user_2abcdefgh"))
	assert.Equal(t, StatusInternalError, status)
	assert.Error(t, err)
}

func TestDispatchSubscriptionDeletedDowngradesUser(t *testing.T) {
	store := newFakeStore("user_2abcdefgh")
	store.users["user_2abcdefgh"].SubscriptionPlan = "premium"
	store.users["user_2abcdefgh"].StripeCustomerID = "cus_1"
	store.users["user_2abcdefgh"].StripeSubscriptionID = "sub_1"

	d := NewDispatcher(store, &fakeRetriever{sub: &StripeSubscription{
		ID:       "sub_1",
		Metadata: map[string]string{MetadataKeyOpaqueUserID: "user_2abcdefgh"},
	}})

	status, err := d.Dispatch(context.Background(), &Event{
		Kind:                KindSubscriptionDeleted,
		SubscriptionDeleted: &SubscriptionDeleted{SubscriptionID: "sub_1"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, status)

	user := store.users["user_2abcdefgh"]
	assert.Empty(t, user.SubscriptionPlan)
	assert.Empty(t, user.StripeCustomerID)
	assert.Empty(t, user.StripeSubscriptionID)

	// All three fields travel as explicit nulls.
	require.Len(t, store.updates, 1)
	assert.Nil(t, store.updates[0].SubscriptionPlan)
	assert.Nil(t, store.updates[0].StripeCustomerID)
	assert.Nil(t, store.updates[0].StripeSubscriptionID)
}

func TestDispatchSubscriptionDeletedWithoutUserMetadata(t *testing.T) {
	store := newFakeStore()
	d := NewDispatcher(store, &fakeRetriever{sub: &StripeSubscription{ID: "sub_1"}})

	status, err := d.Dispatch(context.Background(), &Event{
		Kind:                KindSubscriptionDeleted,
		SubscriptionDeleted: &SubscriptionDeleted{SubscriptionID: "sub_1"},
	})
	assert.Equal(t, StatusInvalidData, status)
	assert.Error(t, err)
	assert.Zero(t, store.updateCalls, "no store mutation without a recovered user id")
}

func TestDispatchSubscriptionDeletedProviderFailure(t *testing.T) {
	store := newFakeStore()
	d := NewDispatcher(store, &fakeRetriever{err: errors.New("stripe: timeout")})

	status, err := d.Dispatch(context.Background(), &Event{
		Kind:                KindSubscriptionDeleted,
		SubscriptionDeleted: &SubscriptionDeleted{SubscriptionID: "sub_1"},
	})
	assert.Equal(t, StatusInternalError, status)
	assert.Error(t, err)
}

func TestDispatchSubscriptionDeletedMissingID(t *testing.T) {
	d := NewDispatcher(newFakeStore(), &fakeRetriever{})

	status, _ := d.Dispatch(context.Background(), &Event{
		Kind:                KindSubscriptionDeleted,
		SubscriptionDeleted: &SubscriptionDeleted{},
	})
	assert.Equal(t, StatusInvalidData, status)
}

func TestDispatchUnrecognizedIsNoOp(t *testing.T) {
	store := newFakeStore()
	d := NewDispatcher(store, &fakeRetriever{})

	status, err := d.Dispatch(context.Background(), &Event{Kind: KindUnrecognized, Type: "charge.refunded"})
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, status)
	assert.Zero(t, store.updateCalls)
}
