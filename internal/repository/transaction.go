package repository

import (
	"context"
	"errors"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertTransactionQuery = `
						INSERT INTO transactions (id, order_id, total_amount, delivery_fee, service_fee, net_for_sellers, gateway_ref, status, is_reversed)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
						RETURNING created_at, updated_at
`
	insertTransactionItemQuery = `
						INSERT INTO transaction_items (id, transaction_id, order_item_id, seller_id, amount, platform_commission, seller_share, owed_amount, payout_status, refund_status, cancelled)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	selectTransactionByRefQuery = `
						SELECT id, order_id, total_amount, delivery_fee, service_fee, net_for_sellers, gateway_ref, status, is_reversed, created_at, updated_at
						FROM transactions
						WHERE id = $1 OR gateway_ref = $1
`
	selectTransactionItemsQuery = `
						SELECT id, transaction_id, order_item_id, seller_id, amount, platform_commission, seller_share, owed_amount, payout_status, refund_status, cancelled
						FROM transaction_items
						WHERE transaction_id = $1
`
	updateTransactionQuery = `
						UPDATE transactions
						SET total_amount = $1, delivery_fee = $2, service_fee = $3, net_for_sellers = $4,
							gateway_ref = $5, status = $6, is_reversed = $7, updated_at = now()
						WHERE id = $8
`
	updateTransactionItemQuery = `
						UPDATE transaction_items
						SET amount = $1, platform_commission = $2, seller_share = $3, owed_amount = $4,
							payout_status = $5, refund_status = $6, cancelled = $7
						WHERE id = $8
`
	deleteTransactionQuery = `
						DELETE FROM transactions
						WHERE id = $1 AND status = 'pending'
`
)

// TransactionRepository persists the settlement ledger. Every save re-runs
// the per-item split so the stored numbers always agree with the fee table
// and commission rate.
type TransactionRepository struct {
	db             *postgres.DB
	fee            models.FeeFunc
	commissionRate float64
}

// NewTransactionRepository creates new TransactionRepository instance
func NewTransactionRepository(db *postgres.DB, fee models.FeeFunc, commissionRate float64) *TransactionRepository {
	return &TransactionRepository{db: db, fee: fee, commissionRate: commissionRate}
}

// CreateTransaction validates the amount invariant, computes the split and
// inserts the ledger with its items
func (tr *TransactionRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if err := tx.ValidateAmounts(); err != nil {
		return nil, err
	}
	if err := tx.Recompute(tr.fee, tr.commissionRate); err != nil {
		return nil, err
	}

	err := tr.db.QueryRow(ctx, insertTransactionQuery,
		tx.ID, tx.OrderID, tx.TotalAmount, tx.DeliveryFee, tx.ServiceFee,
		tx.NetForSellers, tx.GatewayRef, tx.Status, tx.IsReversed,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if tr.db.IsUniqueViolation(err) {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	for i := range tx.Items {
		it := &tx.Items[i]
		it.TransactionID = tx.ID
		if _, err := tr.db.Exec(ctx, insertTransactionItemQuery,
			it.ID, it.TransactionID, it.OrderItemID, it.SellerID, it.Amount,
			it.PlatformCommission, it.SellerShare, it.OwedAmount,
			it.PayoutStatus, it.RefundStatus, it.Cancelled,
		); err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// GetByReference returns the ledger matching either the transaction id or
// the gateway reference, with items loaded
func (tr *TransactionRepository) GetByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	tx := models.Transaction{}
	err := tr.db.QueryRow(ctx, selectTransactionByRefQuery, ref).Scan(
		&tx.ID, &tx.OrderID, &tx.TotalAmount, &tx.DeliveryFee, &tx.ServiceFee,
		&tx.NetForSellers, &tx.GatewayRef, &tx.Status, &tx.IsReversed,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	rows, err := tr.db.Query(ctx, selectTransactionItemsQuery, tx.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		it := models.TransactionItem{}
		err = rows.Scan(
			&it.ID, &it.TransactionID, &it.OrderItemID, &it.SellerID, &it.Amount,
			&it.PlatformCommission, &it.SellerShare, &it.OwedAmount,
			&it.PayoutStatus, &it.RefundStatus, &it.Cancelled,
		)
		if err != nil {
			continue
		}
		tx.Items = append(tx.Items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &tx, nil
}

// SaveTransaction recomputes the split and persists the ledger with its
// items. The recompute is idempotent, so repeated saves of an unchanged
// ledger write identical numbers.
func (tr *TransactionRepository) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := tx.Recompute(tr.fee, tr.commissionRate); err != nil {
		return err
	}

	cmd, err := tr.db.Exec(ctx, updateTransactionQuery,
		tx.TotalAmount, tx.DeliveryFee, tx.ServiceFee, tx.NetForSellers,
		tx.GatewayRef, tx.Status, tx.IsReversed, tx.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	for i := range tx.Items {
		it := &tx.Items[i]
		if _, err := tr.db.Exec(ctx, updateTransactionItemQuery,
			it.Amount, it.PlatformCommission, it.SellerShare, it.OwedAmount,
			it.PayoutStatus, it.RefundStatus, it.Cancelled, it.ID,
		); err != nil {
			return err
		}
	}

	return nil
}

// DeleteIfPending removes a ledger that never reached the gateway. A
// transaction that reached swift_initiated is never deleted.
func (tr *TransactionRepository) DeleteIfPending(ctx context.Context, id string) error {
	cmd, err := tr.db.Exec(ctx, deleteTransactionQuery, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}
	return nil
}
