package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/beifitycom/backend/internal/middleware"
	"github.com/beifitycom/backend/internal/models"
)

type WalletService interface {
	// GetBalance returns the current balance of an account
	GetBalance(ctx context.Context, userID string) (models.Wallet, error)
	// GetPayoutHistory returns the account's payout history, newest first
	GetPayoutHistory(ctx context.Context, userID string) ([]models.PayoutEntry, error)
}

// WalletHandler represents HTTP handler for balance-related requests
type WalletHandler struct {
	svc WalletService
}

// NewWalletHandler creates new WalletHandler instance
func NewWalletHandler(svc WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

// GetBalance returns the current account balance
// 200 — balance returned
// 401 — unauthenticated
// 500 — internal error
func (wh *WalletHandler) GetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		wallet, err := wh.svc.GetBalance(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(balanceResponse{Balance: wallet.Balance}); err != nil {
			return
		}
	}
}

type payoutEntryResponse struct {
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
	CreatedAt string  `json:"createdAt"`
}

// GetPayoutHistory returns the account's payout history
// 200 — history returned
// 204 — no movements yet
// 401 — unauthenticated
// 500 — internal error
func (wh *WalletHandler) GetPayoutHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		history, err := wh.svc.GetPayoutHistory(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(history) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var resp []payoutEntryResponse
		for _, entry := range history {
			resp = append(resp, payoutEntryResponse{
				Amount:    entry.Amount,
				Note:      entry.Note,
				CreatedAt: entry.CreatedAt.Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
