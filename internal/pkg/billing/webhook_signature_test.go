package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sigTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	secret := "whsec_test"

	header := SignPayload(payload, secret, sigTestNow)
	assert.NoError(t, VerifyWebhookSignature(payload, header, secret, sigTestNow))
}

func TestVerifyWebhookSignatureRejectsTamperedBody(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	secret := "whsec_test"

	header := SignPayload(payload, secret, sigTestNow)
	mutated := []byte(`{"id":"evt_1","type":"invoice.paid" }`)
	assert.Error(t, VerifyWebhookSignature(mutated, header, secret, sigTestNow),
		"any byte difference from the signed payload must fail")
}

func TestVerifyWebhookSignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	header := SignPayload(payload, "whsec_other", sigTestNow)
	assert.Error(t, VerifyWebhookSignature(payload, header, "whsec_test", sigTestNow))
}

func TestVerifyWebhookSignatureRejectsExpiredTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"

	header := SignPayload(payload, secret, sigTestNow.Add(-6*time.Minute))
	assert.Error(t, VerifyWebhookSignature(payload, header, secret, sigTestNow))

	// Just inside the tolerance is fine.
	header = SignPayload(payload, secret, sigTestNow.Add(-4*time.Minute))
	assert.NoError(t, VerifyWebhookSignature(payload, header, secret, sigTestNow))
}

func TestVerifyWebhookSignatureRejectsMalformedHeaders(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"

	headers := []string{
		"",
		"garbage",
		"t=notanumber,v1=00",
		fmt.Sprintf("t=%d", sigTestNow.Unix()),
		fmt.Sprintf("t=%d,v1=zz", sigTestNow.Unix()),
		"v1=00ff",
	}
	for _, h := range headers {
		assert.Error(t, VerifyWebhookSignature(payload, h, secret, sigTestNow), "header %q", h)
	}
}

func TestVerifyWebhookSignatureAcceptsExtraSchemes(t *testing.T) {
	payload := []byte(`{"ok":true}`)
	secret := "whsec_test"

	valid := SignPayload(payload, secret, sigTestNow)
	// Providers may send older scheme values alongside v1.
	header := valid + ",v0=deadbeef"
	require.NoError(t, VerifyWebhookSignature(payload, header, secret, sigTestNow))
}
