package service

import (
	"context"

	"github.com/beifitycom/backend/internal/models"
)

// WalletService is the read side of user financials: current balance and
// payout history. All writes go through the settlement engine.
type WalletService struct {
	repo WalletRepository
}

// NewWalletService creates new WalletService instance
func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

// GetBalance returns the current balance of an account
func (ws *WalletService) GetBalance(ctx context.Context, userID string) (models.Wallet, error) {
	return ws.repo.GetWallet(ctx, userID)
}

// GetPayoutHistory returns the account's payout history, newest first
func (ws *WalletService) GetPayoutHistory(ctx context.Context, userID string) ([]models.PayoutEntry, error) {
	return ws.repo.GetHistoryByUserID(ctx, userID)
}
