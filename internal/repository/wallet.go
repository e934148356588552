package repository

import (
	"context"
	"errors"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	selectWalletQuery = `
						SELECT user_id, balance FROM wallets
						WHERE user_id = $1
`
	upsertWalletDeltaQuery = `
						INSERT INTO wallets (user_id, balance)
						VALUES ($1, $2)
						ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2
`
	insertPayoutEntryQuery = `
						INSERT INTO payout_history (user_id, amount, note)
						VALUES ($1, $2, $3)
						RETURNING id, user_id, amount, note, created_at
`
	selectPayoutHistoryQuery = `
						SELECT id, user_id, amount, note, created_at FROM payout_history
						WHERE user_id = $1
						ORDER BY created_at DESC
`
)

// WalletRepository implements balance and payout-history persistence
type WalletRepository struct {
	db *postgres.DB
}

// NewWalletRepository creates new wallet repository instance
func NewWalletRepository(db *postgres.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetWallet returns the current balance of an account. A missing wallet row
// reads as a zero balance.
func (wr *WalletRepository) GetWallet(ctx context.Context, userID string) (models.Wallet, error) {
	wallet := models.Wallet{UserID: userID}
	err := wr.db.QueryRow(ctx, selectWalletQuery, userID).Scan(&wallet.UserID, &wallet.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// no wallet row yet: zero balance
		return wallet, nil
	}
	if err != nil {
		return models.Wallet{}, err
	}

	return wallet, nil
}

// AdjustBalance applies a signed delta to the account balance, creating the
// wallet row on first use
func (wr *WalletRepository) AdjustBalance(ctx context.Context, userID string, delta float64) error {
	_, err := wr.db.Exec(ctx, upsertWalletDeltaQuery, userID, delta)
	return err
}

// AppendHistory records one signed movement in the account's payout history
func (wr *WalletRepository) AppendHistory(ctx context.Context, entry *models.PayoutEntry) (*models.PayoutEntry, error) {
	err := wr.db.QueryRow(ctx, insertPayoutEntryQuery, entry.UserID, entry.Amount, entry.Note).
		Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Note, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetHistoryByUserID returns payout history, newest first
func (wr *WalletRepository) GetHistoryByUserID(ctx context.Context, userID string) ([]models.PayoutEntry, error) {
	rows, err := wr.db.Query(ctx, selectPayoutHistoryQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PayoutEntry

	for rows.Next() {
		entry := models.PayoutEntry{}
		err = rows.Scan(&entry.ID, &entry.UserID, &entry.Amount, &entry.Note, &entry.CreatedAt)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
