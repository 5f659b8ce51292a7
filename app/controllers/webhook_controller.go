package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/FinWiseHQ/FinWise/app/models"
	"github.com/FinWiseHQ/FinWise/internal/pkg/billing"
	"github.com/FinWiseHQ/FinWise/internal/pkg/env"
	"github.com/FinWiseHQ/FinWise/internal/pkg/ratelimit"
)

const webhookHandlerTimeout = 15 * time.Second

// WebhookRecorder persists deliveries for deduplication and audit. It
// is optional: a nil recorder disables persistence without touching
// the gateway's core path.
type WebhookRecorder interface {
	RecordWebhookEvent(ctx context.Context, in billing.WebhookEventInput) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError error) error
}

// WebhookController is the payment-provider webhook gateway endpoint.
type WebhookController struct {
	limiter    ratelimit.Limiter
	dispatcher *billing.Dispatcher
	recorder   WebhookRecorder

	now func() time.Time
}

func NewWebhookController(limiter ratelimit.Limiter, dispatcher *billing.Dispatcher, recorder WebhookRecorder) *WebhookController {
	return &WebhookController{
		limiter:    limiter,
		dispatcher: dispatcher,
		recorder:   recorder,
		now:        time.Now,
	}
}

// HandleStripeWebhook processes one provider delivery: transport
// validation, throttling, signature verification, then idempotent
// dispatch. Rejections return a generic reason; the detailed cause is
// only logged.
func (ctl *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get(billing.SignatureHeader))
	webhookSecret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	secretsConfigured := env.GetEnv("STRIPE_SECRET_KEY", "") != "" && webhookSecret != ""

	if rej := billing.ValidateTransport(c.Get(fiber.HeaderContentType), signature, len(rawBody), secretsConfigured); rej != nil {
		if rej.Status >= fiber.StatusInternalServerError {
			log.Printf("webhook: rejected delivery: %s (operational)", rej.Reason)
		} else {
			log.Printf("webhook: rejected delivery: %s", rej.Reason)
		}
		return c.Status(rej.Status).JSON(fiber.Map{"error": rej.Reason})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookHandlerTimeout)
	defer cancel()

	clientID := clientIdentifier(c)
	if !ctl.limiter.Admit(ctx, clientID) {
		log.Printf("webhook: rate limit exceeded for client %s", clientID)
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too_many_requests"})
	}

	// The raw wire bytes are the signed payload; never a re-encoded form.
	if err := billing.VerifyWebhookSignature(rawBody, signature, webhookSecret, ctl.now()); err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := billing.ParseEvent(rawBody)
	if err != nil {
		log.Printf("webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	var storedID uint
	if ctl.recorder != nil {
		created, stored, err := ctl.recorder.RecordWebhookEvent(ctx, billing.WebhookEventInput{
			Provider:        models.BillingProviderStripe,
			ProviderEventID: event.ID,
			EventType:       event.Type,
			PayloadJSON:     string(rawBody),
			SignatureValid:  true,
		})
		if err != nil {
			log.Printf("webhook: failed to persist event %s: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
		}
		// A delivery already processed without error is acknowledged
		// as-is; one that previously failed gets re-dispatched, which
		// is safe because all handlers apply absolute sets.
		if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
		}
		storedID = stored.ID
	}

	status, dispatchErr := ctl.dispatcher.Dispatch(ctx, event)
	if ctl.recorder != nil {
		if err := ctl.recorder.MarkWebhookProcessed(ctx, storedID, dispatchErr); err != nil {
			log.Printf("webhook: failed to mark event %d processed: %v", storedID, err)
		}
	}

	switch status {
	case billing.StatusApplied:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	case billing.StatusInvalidData:
		log.Printf("webhook: event %s (%s) has invalid data: %v", event.ID, event.Type, dispatchErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_event_data"})
	default:
		log.Printf("webhook: event %s (%s) processing failed: %v", event.ID, event.Type, dispatchErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
}

// clientIdentifier derives the throttling key from the forwarded-IP
// headers, falling back to a shared sentinel when neither is present.
func clientIdentifier(c *fiber.Ctx) string {
	if fwd := strings.TrimSpace(c.Get("X-Forwarded-For")); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return fwd
	}
	if real := strings.TrimSpace(c.Get("X-Real-IP")); real != "" {
		return real
	}
	return "unknown"
}
