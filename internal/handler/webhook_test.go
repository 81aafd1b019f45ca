package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

type stubReconciler struct {
	err       error
	duplicate bool
	events    []*stripe.Event
}

func (s *stubReconciler) HandleEvent(ctx context.Context, event *stripe.Event) (bool, error) {
	s.events = append(s.events, event)
	return s.duplicate, s.err
}

const testSecret = "whsec_test_secret"

func signedRequest(t *testing.T, secret, payload string) *http.Request {
	t.Helper()

	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func serve(h *WebhookHandler, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.StripeWebhook(c)
	return rec
}

const eventJSON = `{"id":"evt_1","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`

func TestWebhookAcceptsSignedEvent(t *testing.T) {
	stub := &stubReconciler{}
	h := NewWebhookHandler(stub, testSecret)

	rec := serve(h, signedRequest(t, testSecret, eventJSON))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["received"])
	_, ok := resp["duplicate"]
	assert.False(t, ok, "fresh event must not carry the duplicate flag")

	require.Len(t, stub.events, 1)
	assert.Equal(t, "evt_1", stub.events[0].ID)
}

func TestWebhookReportsDuplicateDelivery(t *testing.T) {
	stub := &stubReconciler{duplicate: true}
	h := NewWebhookHandler(stub, testSecret)

	rec := serve(h, signedRequest(t, testSecret, eventJSON))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["received"])
	assert.True(t, resp["duplicate"])
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	stub := &stubReconciler{}
	h := NewWebhookHandler(stub, testSecret)

	// Signed with the wrong secret.
	rec := serve(h, signedRequest(t, "whsec_other", eventJSON))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid signature")
	assert.Empty(t, stub.events)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	stub := &stubReconciler{}
	h := NewWebhookHandler(stub, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader([]byte(eventJSON)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.events)
}

func TestWebhookUnverifiedFallbackWithoutSecret(t *testing.T) {
	stub := &stubReconciler{}
	h := NewWebhookHandler(stub, "")

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader([]byte(eventJSON)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.events, 1)
	assert.Equal(t, "evt_1", stub.events[0].ID)
}

func TestWebhookUnverifiedFallbackRejectsGarbage(t *testing.T) {
	stub := &stubReconciler{}
	h := NewWebhookHandler(stub, "")

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader([]byte("not json")))
	rec := serve(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.events)
}

func TestWebhookProcessingFailureReturns500(t *testing.T) {
	stub := &stubReconciler{err: errors.New("record order: db down")}
	h := NewWebhookHandler(stub, testSecret)

	rec := serve(h, signedRequest(t, testSecret, eventJSON))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "record order")
}
