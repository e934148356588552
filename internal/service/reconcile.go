package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beifitycom/backend/internal/gateway"
	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/models"
	"go.uber.org/zap"
)

// Outcome classifies how a gateway event was reconciled.
type Outcome string

const (
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeFailure       Outcome = "failure"
	OutcomeSuccess       Outcome = "success"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeOrderNotFound Outcome = "order_not_found"
)

// WebhookEvent is the gateway's callback payload.
type WebhookEvent struct {
	TransactionID     string       `json:"transaction_id"`
	ExternalReference string       `json:"external_reference"`
	Status            string       `json:"status"`
	ServiceFee        float64      `json:"service_fee"`
	Result            WebhookResult `json:"result"`
}

// WebhookResult carries the gateway's raw result block.
type WebhookResult struct {
	ResultCode      int    `json:"ResultCode"`
	TransactionDate string `json:"TransactionDate"`
}

// PaymentStatus is the answer to a client polling the verification endpoint.
type PaymentStatus struct {
	Status        string     `json:"status"`
	Amount        float64    `json:"amount"`
	PaymentMethod string     `json:"paymentMethod"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// ReconcileService turns asynchronous gateway events into ledger and order
// state transitions. The webhook path and the polling verification path
// share one finalize step, so delivering both for the same payment
// converges on a single outcome.
type ReconcileService struct {
	store      AtomicStore
	orders     OrderRepository
	txs        TransactionRepository
	wallets    WalletRepository
	inventory  InventoryRepository
	outbox     OutboxRepository
	gateway    Gateway
	platformID string
}

// NewReconcileService creates new ReconcileService instance
func NewReconcileService(store AtomicStore, orders OrderRepository, txs TransactionRepository,
	wallets WalletRepository, inventory InventoryRepository, outbox OutboxRepository,
	gw Gateway, platformID string) *ReconcileService {
	return &ReconcileService{
		store:      store,
		orders:     orders,
		txs:        txs,
		wallets:    wallets,
		inventory:  inventory,
		outbox:     outbox,
		gateway:    gw,
		platformID: platformID,
	}
}

// HandleWebhook processes one gateway callback inside a retryable atomic
// scope. Redelivered events resolve to OutcomeDuplicate without touching
// balances; events for unknown references resolve to OutcomeNotFound and
// are acknowledged, since redelivery cannot fix them.
func (rs *ReconcileService) HandleWebhook(ctx context.Context, event WebhookEvent) (Outcome, error) {
	outcome := OutcomeNotFound

	ref := event.ExternalReference
	if ref == "" {
		ref = event.TransactionID
	}

	err := rs.store.RunAtomic(ctx, func(ctx context.Context) error {
		tx, err := rs.txs.GetByReference(ctx, ref)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				outcome = OutcomeNotFound
				return nil
			}
			return err
		}

		// idempotency guard against at-least-once delivery: a ledger that
		// already reached a terminal state is never touched again, so a
		// redelivered failure cannot re-run the rollback either
		if tx.Status == models.TxStatusCompleted || tx.Status == models.TxStatusReversed ||
			tx.Status == models.TxStatusFailed {
			outcome = OutcomeDuplicate
			return nil
		}

		if event.Status != gateway.StatusCompleted {
			out, err := rs.failPayment(ctx, tx)
			outcome = out
			return err
		}

		out, err := rs.settle(ctx, tx, event.TransactionID)
		outcome = out
		return err
	})
	if err != nil {
		return outcome, err
	}

	if outcome == OutcomeNotFound {
		logger.Log.Info("webhook for unknown reference",
			zap.String("external_reference", event.ExternalReference),
			zap.String("transaction_id", event.TransactionID))
	}

	return outcome, nil
}

// failPayment rolls an unpaid order back to a retryable state: reserved
// inventory is restored, pending counters are released, the ledger is
// marked failed and unlinked from the order.
func (rs *ReconcileService) failPayment(ctx context.Context, tx *models.Transaction) (Outcome, error) {
	order, err := rs.orders.GetOrderByID(ctx, tx.OrderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return OutcomeOrderNotFound, nil
		}
		return OutcomeFailure, err
	}

	// a failure event for a superseded attempt only closes its own ledger;
	// the live attempt linked to the order keeps its reservation
	if order.TransactionID != tx.ID {
		tx.Status = models.TxStatusFailed
		return OutcomeFailure, rs.txs.SaveTransaction(ctx, tx)
	}

	if order.Status == models.OrderStatusPending {
		sellers := make(map[string]bool)
		for _, it := range order.Items {
			if it.Cancelled {
				continue
			}
			if err := rs.inventory.AdjustStock(ctx, it.ListingID, it.Quantity); err != nil {
				return OutcomeFailure, err
			}
			sellers[it.SellerID] = true
		}
		if err := rs.inventory.AdjustPendingOrders(ctx, order.BuyerID, -1); err != nil {
			return OutcomeFailure, err
		}
		for sellerID := range sellers {
			if err := rs.inventory.AdjustPendingOrders(ctx, sellerID, -1); err != nil {
				return OutcomeFailure, err
			}
		}
	}

	tx.Status = models.TxStatusFailed
	if err := rs.txs.SaveTransaction(ctx, tx); err != nil {
		return OutcomeFailure, err
	}
	// unlink so a retry can create a fresh payment attempt
	if err := rs.orders.UnlinkTransaction(ctx, order.ID); err != nil {
		return OutcomeFailure, err
	}

	if err := rs.outbox.Enqueue(ctx, &models.Notification{
		RecipientID: order.BuyerID,
		Kind:        models.NotifyPaymentFailed,
		Content:     fmt.Sprintf("Payment for order %s failed. You can retry from the order page.", order.ID),
	}); err != nil {
		return OutcomeFailure, err
	}

	return OutcomeFailure, nil
}

// settle finalizes a confirmed payment: the ledger completes, the split is
// recomputed, the platform and every seller are credited, and the order
// flips to paid.
func (rs *ReconcileService) settle(ctx context.Context, tx *models.Transaction, gatewayTxID string) (Outcome, error) {
	order, err := rs.orders.GetOrderByID(ctx, tx.OrderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return OutcomeOrderNotFound, nil
		}
		return OutcomeSuccess, err
	}

	// a success callback can lose the race with a full cancellation. The
	// order stays in its terminal state and the captured amount goes back
	// to the buyer instead of being split
	if !order.CanTransition(models.OrderStatusPaid) {
		tx.Status = models.TxStatusReversed
		tx.IsReversed = true
		if err := rs.txs.SaveTransaction(ctx, tx); err != nil {
			return OutcomeSuccess, err
		}
		if err := rs.outbox.Enqueue(ctx, &models.Notification{
			RecipientID: order.BuyerID,
			Kind:        models.NotifyRefundInitiated,
			Content:     fmt.Sprintf("Payment of %.2f for cancelled order %s will be refunded", tx.TotalAmount, order.ID),
		}); err != nil {
			return OutcomeSuccess, err
		}
		logger.Log.Warn("payment arrived for a cancelled order",
			zap.String("order", order.ID),
			zap.String("transaction", tx.ID))
		return OutcomeSuccess, nil
	}

	tx.Status = models.TxStatusCompleted
	// SaveTransaction re-runs the per-item split before writing
	if err := rs.txs.SaveTransaction(ctx, tx); err != nil {
		return OutcomeSuccess, err
	}

	platformCut := tx.ServiceFee + tx.DeliveryFee + tx.TotalCommission()
	if err := rs.credit(ctx, rs.platformID, platformCut,
		fmt.Sprintf("fees for order %s", order.ID)); err != nil {
		return OutcomeSuccess, err
	}

	for sellerID, share := range tx.SellerShares() {
		if err := rs.credit(ctx, sellerID, share,
			fmt.Sprintf("sale on order %s", order.ID)); err != nil {
			return OutcomeSuccess, err
		}
	}

	if err := rs.orders.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPaid); err != nil {
		return OutcomeSuccess, err
	}

	if err := rs.outbox.Enqueue(ctx, &models.Notification{
		RecipientID: order.BuyerID,
		Kind:        models.NotifyOrderPaid,
		Content:     fmt.Sprintf("Payment of %.2f for order %s received", tx.TotalAmount, order.ID),
	}); err != nil {
		return OutcomeSuccess, err
	}
	for sellerID := range tx.SellerShares() {
		if err := rs.outbox.Enqueue(ctx, &models.Notification{
			RecipientID: sellerID,
			Kind:        models.NotifyItemSold,
			Content:     fmt.Sprintf("You have a new paid order %s", order.ID),
			CausedBy:    order.BuyerID,
		}); err != nil {
			return OutcomeSuccess, err
		}
	}

	logger.Log.Info("payment settled",
		zap.String("order", order.ID),
		zap.String("transaction", tx.ID),
		zap.String("gateway_tx", gatewayTxID),
		zap.Float64("amount", tx.TotalAmount))

	return OutcomeSuccess, nil
}

// VerifyPayment serves client polling. An already completed ledger returns
// immediately. Otherwise the gateway's transaction list is consulted
// out-of-band and, on a confirmed payment, the ledger is finalized in a
// fresh atomic scope exactly as the webhook path would, so the two paths
// are mutually idempotent.
func (rs *ReconcileService) VerifyPayment(ctx context.Context, reference string) (*PaymentStatus, error) {
	tx, err := rs.txs.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if tx.Status == models.TxStatusCompleted {
		paidAt := tx.UpdatedAt
		return &PaymentStatus{
			Status:        "completed",
			Amount:        tx.TotalAmount,
			PaymentMethod: "swift",
			PaidAt:        &paidAt,
		}, nil
	}

	// gateway query stays outside any transactional scope so a slow network
	// call never holds row locks
	gwTx, err := rs.gateway.FindTransaction(ctx, tx.ID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return &PaymentStatus{Status: "pending", Amount: tx.TotalAmount, PaymentMethod: "swift"}, nil
		}
		return nil, err
	}

	if gwTx.Status != gateway.StatusCompleted {
		return &PaymentStatus{Status: "pending", Amount: tx.TotalAmount, PaymentMethod: "swift"}, nil
	}

	err = rs.store.RunAtomic(ctx, func(ctx context.Context) error {
		// re-read inside the scope; a webhook may have settled it meanwhile
		fresh, err := rs.txs.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		if fresh.Status == models.TxStatusCompleted {
			return nil
		}
		_, err = rs.settle(ctx, fresh, gwTx.TransactionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &PaymentStatus{
		Status:        "completed",
		Amount:        tx.TotalAmount,
		PaymentMethod: "swift",
		PaidAt:        &now,
	}, nil
}

func (rs *ReconcileService) credit(ctx context.Context, userID string, amount float64, note string) error {
	if err := rs.wallets.AdjustBalance(ctx, userID, amount); err != nil {
		return err
	}
	_, err := rs.wallets.AppendHistory(ctx, &models.PayoutEntry{
		UserID: userID,
		Amount: amount,
		Note:   note,
	})
	return err
}
