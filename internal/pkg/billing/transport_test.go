package billing

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransport(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		signature   string
		bodyLen     int
		secretsOK   bool
		wantStatus  int // 0 means accepted
		wantReason  string
	}{
		{
			name:        "accepted",
			contentType: "application/json",
			signature:   "t=1,v1=00",
			bodyLen:     42,
			secretsOK:   true,
		},
		{
			name:        "missing secrets is an operational failure",
			contentType: "application/json",
			signature:   "t=1,v1=00",
			bodyLen:     42,
			secretsOK:   false,
			wantStatus:  fiber.StatusInternalServerError,
			wantReason:  "server_configuration_error",
		},
		{
			name:        "wrong content type",
			contentType: "text/plain",
			signature:   "t=1,v1=00",
			bodyLen:     42,
			secretsOK:   true,
			wantStatus:  fiber.StatusBadRequest,
			wantReason:  "unsupported_media_type",
		},
		{
			name:        "content type with charset suffix is rejected",
			contentType: "application/json; charset=utf-8",
			signature:   "t=1,v1=00",
			bodyLen:     42,
			secretsOK:   true,
			wantStatus:  fiber.StatusBadRequest,
			wantReason:  "unsupported_media_type",
		},
		{
			name:        "empty body",
			contentType: "application/json",
			signature:   "t=1,v1=00",
			bodyLen:     0,
			secretsOK:   true,
			wantStatus:  fiber.StatusBadRequest,
			wantReason:  "empty_payload",
		},
		{
			name:        "exactly the cap is accepted",
			contentType: "application/json",
			signature:   "t=1,v1=00",
			bodyLen:     MaxPayloadBytes,
			secretsOK:   true,
		},
		{
			name:        "one byte over the cap",
			contentType: "application/json",
			signature:   "t=1,v1=00",
			bodyLen:     MaxPayloadBytes + 1,
			secretsOK:   true,
			wantStatus:  fiber.StatusRequestEntityTooLarge,
			wantReason:  "payload_too_large",
		},
		{
			name:        "missing signature header",
			contentType: "application/json",
			signature:   "",
			bodyLen:     42,
			secretsOK:   true,
			wantStatus:  fiber.StatusUnauthorized,
			wantReason:  "unauthorized",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rej := ValidateTransport(tc.contentType, tc.signature, tc.bodyLen, tc.secretsOK)
			if tc.wantStatus == 0 {
				assert.Nil(t, rej)
				return
			}
			if assert.NotNil(t, rej) {
				assert.Equal(t, tc.wantStatus, rej.Status)
				assert.Equal(t, tc.wantReason, rej.Reason)
			}
		})
	}
}
