package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

// signatureTolerance bounds how far a signed timestamp may drift from
// the gateway clock before the delivery is rejected as a replay.
const signatureTolerance = 5 * time.Minute

// VerifyWebhookSignature authenticates the raw payload bytes against a
// signature header of the form "t=<unix>,v1=<hex hmac-sha256>". The
// MAC covers "<t>.<payload>", so the exact bytes received on the wire
// must be passed in; re-encoding the body before verification breaks
// the signature. The returned error carries the detailed cause for
// internal logging; callers must surface only a generic rejection.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string, now time.Time) error {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" {
		return errors.New("signature header is empty")
	}
	if secret == "" {
		return errors.New("webhook secret is not configured")
	}

	var timestamp int64 = -1
	var candidates [][]byte
	for _, part := range strings.Split(sig, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed signature timestamp %q", v)
			}
			timestamp = ts
		case "v1":
			decoded, err := hex.DecodeString(strings.ToLower(v))
			if err != nil {
				return fmt.Errorf("malformed v1 signature: %w", err)
			}
			candidates = append(candidates, decoded)
		}
	}
	if timestamp < 0 {
		return errors.New("signature header has no timestamp")
	}
	if len(candidates) == 0 {
		return errors.New("signature header has no v1 signature")
	}

	if drift := now.Sub(time.Unix(timestamp, 0)); drift > signatureTolerance || drift < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance: drift=%s", drift)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		if hmac.Equal(expected, candidate) {
			return nil
		}
	}
	return errors.New("no v1 signature matches payload")
}

// SignPayload produces a header value that VerifyWebhookSignature
// accepts for the given payload. Used by tests and the local webhook
// replay tooling.
func SignPayload(payload []byte, webhookSecret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
