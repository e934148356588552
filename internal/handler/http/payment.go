package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Swift-Signature"

type ReconcileProvider interface {
	HandleWebhook(ctx context.Context, event service.WebhookEvent) (service.Outcome, error)
	VerifyPayment(ctx context.Context, reference string) (*service.PaymentStatus, error)
}

// PaymentHandler represents HTTP handler for gateway callbacks and payment polling
type PaymentHandler struct {
	svc        ReconcileProvider
	webhookKey string
}

// NewPaymentHandler creates new PaymentHandler instance. An empty webhookKey
// disables signature verification.
func NewPaymentHandler(svc ReconcileProvider, webhookKey string) *PaymentHandler {
	return &PaymentHandler{svc: svc, webhookKey: webhookKey}
}

// Webhook receives gateway payment callbacks
// 200 — event processed (including duplicates and unknown references)
// 400 — malformed body
// 401 — missing or invalid signature
// 500 — internal error, gateway should redeliver
func (ph *PaymentHandler) Webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if !ph.verifySignature(body, r.Header.Get(SignatureHeader)) {
			logger.Log.Warn("webhook signature mismatch")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		var event service.WebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		outcome, err := ph.svc.HandleWebhook(r.Context(), event)
		if err != nil {
			logger.Log.Error("webhook processing failed",
				zap.String("external_reference", event.ExternalReference),
				zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"result": string(outcome)})
	}
}

// verifySignature checks the hex HMAC-SHA256 of body against the shared key.
func (ph *PaymentHandler) verifySignature(body []byte, signature string) bool {
	if ph.webhookKey == "" {
		return true
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(ph.webhookKey))
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// Verify lets a client poll the state of a payment attempt by reference
func (ph *PaymentHandler) Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := ph.svc.VerifyPayment(r.Context(), chi.URLParam(r, "reference"))
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			var gatewayErr *models.GatewayError
			if errors.As(err, &gatewayErr) {
				http.Error(w, "gateway unavailable", http.StatusBadGateway)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(status)
	}
}
