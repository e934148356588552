package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beifitycom/backend/internal/models"
)

type PayoutService interface {
	// RefundItem refunds one settled line item back to the buyer
	RefundItem(ctx context.Context, orderID, itemID string) error
	// PayoutSeller transfers a seller's accumulated share out of the ledger
	PayoutSeller(ctx context.Context, transactionID, orderItemID string) error
	// ReverseOrder unwinds a fully settled order
	ReverseOrder(ctx context.Context, orderID string) error
}

// AdminHandler represents HTTP handler for manual settlement operations.
// Routes using it must sit behind the admin middleware.
type AdminHandler struct {
	svc PayoutService
}

// NewAdminHandler creates new AdminHandler instance
func NewAdminHandler(svc PayoutService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type refundRequest struct {
	OrderID string `json:"orderId"`
	ItemID  string `json:"itemId"`
}

// Refund refunds one settled line item
// 200 — refund recorded (idempotent, repeat calls are no-ops)
// 400 — malformed request
// 404 — order or item not found
// 409 — ledger not in a refundable state
// 500 — internal error
func (ah *AdminHandler) Refund() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := ah.svc.RefundItem(r.Context(), req.OrderID, req.ItemID); err != nil {
			writeAdminError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

type payoutRequest struct {
	TransactionID string `json:"transactionId"`
	OrderItemID   string `json:"orderItemId"`
}

// Payout transfers a seller's pending share out of the ledger
func (ah *AdminHandler) Payout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := ah.svc.PayoutSeller(r.Context(), req.TransactionID, req.OrderItemID); err != nil {
			writeAdminError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

type reverseRequest struct {
	OrderID string `json:"orderId"`
}

// Reverse unwinds a fully settled order
func (ah *AdminHandler) Reverse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reverseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := ah.svc.ReverseOrder(r.Context(), req.OrderID); err != nil {
			writeAdminError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func writeAdminError(w http.ResponseWriter, err error) {
	var (
		validationErr  *models.ValidationError
		consistencyErr *models.ConsistencyError
	)

	switch {
	case errors.Is(err, models.ErrDataNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &consistencyErr):
		http.Error(w, "ledger not in a payable state", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
