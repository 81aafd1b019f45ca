package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"habitflow-payments/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe webhook payloads are small; the limit guards against abuse.
const webhookBodyLimit = 1024 * 1024 // 1 MiB

type WebhookHandler struct {
	reconciler    service.ReconcilerService
	webhookSecret string
}

func NewWebhookHandler(reconciler service.ReconcilerService, webhookSecret string) *WebhookHandler {
	if webhookSecret == "" {
		log.Warn().Msg("no webhook signing secret configured, events will be parsed UNVERIFIED (dev mode only)")
	}
	return &WebhookHandler{
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
	}
}

// StripeWebhook is the single inbound surface of the reconciler. Signature
// verification is the only authentication on this route.
func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, webhookBodyLimit)
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read request body"})
	}

	var event stripe.Event
	if h.webhookSecret != "" {
		sig := c.Request().Header.Get("Stripe-Signature")
		event, err = webhook.ConstructEventWithOptions(body, sig, h.webhookSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("webhook signature verification failed")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid signature"})
		}
	} else {
		if err := json.Unmarshal(body, &event); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event payload"})
		}
		log.Warn().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("processing UNVERIFIED webhook event")
	}

	log.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Msg("webhook event received")

	duplicate, err := h.reconciler.HandleEvent(ctx, &event)
	if err != nil {
		log.Error().Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("webhook event processing failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	resp := echo.Map{"received": true}
	if duplicate {
		resp["duplicate"] = true
	}
	return c.JSON(http.StatusOK, resp)
}
