package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventInvoicePaid(t *testing.T) {
	payload := []byte(`{
		"id": "evt_100",
		"type": "invoice.paid",
		"data": {"object": {
			"customer": "cus_1",
			"subscription": "sub_1",
			"subscription_details": {"metadata": {"clerk_user_id": "user_2abcdefgh"}}
		}}
	}`)

	ev, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_100", ev.ID)
	assert.Equal(t, KindInvoicePaid, ev.Kind)
	require.NotNil(t, ev.InvoicePaid)
	assert.Equal(t, "cus_1", ev.InvoicePaid.CustomerID)
	assert.Equal(t, "sub_1", ev.InvoicePaid.SubscriptionID)
	assert.Equal(t, "user_2abcdefgh", ev.InvoicePaid.OpaqueUserID)
	assert.Nil(t, ev.SubscriptionDeleted)
}

func TestParseEventSubscriptionDeleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_101",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_9"}}
	}`)

	ev, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, KindSubscriptionDeleted, ev.Kind)
	require.NotNil(t, ev.SubscriptionDeleted)
	assert.Equal(t, "sub_9", ev.SubscriptionDeleted.SubscriptionID)
	assert.Nil(t, ev.InvoicePaid)
}

func TestParseEventUnknownTypeIsUnrecognized(t *testing.T) {
	payload := []byte(`{"id": "evt_102", "type": "charge.refunded", "data": {"object": {}}}`)

	ev, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, KindUnrecognized, ev.Kind)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Nil(t, ev.InvoicePaid)
	assert.Nil(t, ev.SubscriptionDeleted)
}

func TestParseEventMissingFieldsStillParses(t *testing.T) {
	// Field-level validation belongs to the dispatcher; parsing only
	// rejects malformed JSON.
	ev, err := ParseEvent([]byte(`{"type": "invoice.paid", "data": {"object": {}}}`))
	require.NoError(t, err)
	require.NotNil(t, ev.InvoicePaid)
	assert.Empty(t, ev.InvoicePaid.CustomerID)
	assert.Empty(t, ev.InvoicePaid.OpaqueUserID)
}

func TestParseEventMalformedJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type": "invoice.paid"`))
	assert.Error(t, err)
}
