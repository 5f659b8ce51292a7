package billing

import "github.com/gofiber/fiber/v2"

// MaxPayloadBytes is the hard cap on webhook payload size.
const MaxPayloadBytes = 1 << 20 // 1 MiB

// ExpectedContentType is the only media type the gateway accepts.
const ExpectedContentType = "application/json"

// Rejection is a transport-level refusal: the HTTP status plus the
// generic reason returned to the caller. Detailed causes stay in logs.
type Rejection struct {
	Status int
	Reason string
}

// ValidateTransport enforces the transport preconditions in order,
// short-circuiting on the first failure. It performs no parsing and
// has no side effects.
func ValidateTransport(contentType, signature string, bodyLen int, secretsConfigured bool) *Rejection {
	if !secretsConfigured {
		return &Rejection{Status: fiber.StatusInternalServerError, Reason: "server_configuration_error"}
	}
	if contentType != ExpectedContentType {
		return &Rejection{Status: fiber.StatusBadRequest, Reason: "unsupported_media_type"}
	}
	if bodyLen == 0 {
		return &Rejection{Status: fiber.StatusBadRequest, Reason: "empty_payload"}
	}
	if bodyLen > MaxPayloadBytes {
		return &Rejection{Status: fiber.StatusRequestEntityTooLarge, Reason: "payload_too_large"}
	}
	if signature == "" {
		return &Rejection{Status: fiber.StatusUnauthorized, Reason: "unauthorized"}
	}
	return nil
}
