package service

import (
	"context"
	"fmt"

	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/models"
	"go.uber.org/zap"
)

// PayoutService is the manual payout/refund engine. The gateway does not
// automate outbound transfers, so payouts and refunds are recorded as local
// ledger-balance mutations gated by status checks, each inside an atomic
// scope with bounded retry.
type PayoutService struct {
	store      AtomicStore
	orders     OrderRepository
	txs        TransactionRepository
	wallets    WalletRepository
	outbox     OutboxRepository
	platformID string
}

// NewPayoutService creates new PayoutService instance
func NewPayoutService(store AtomicStore, orders OrderRepository, txs TransactionRepository,
	wallets WalletRepository, outbox OutboxRepository, platformID string) *PayoutService {
	return &PayoutService{
		store:      store,
		orders:     orders,
		txs:        txs,
		wallets:    wallets,
		outbox:     outbox,
		platformID: platformID,
	}
}

// RefundItem initiates a refund for one order item. If the item's refund is
// already underway the call is a successful no-op, so racing refund
// requests debit balances at most once.
func (ps *PayoutService) RefundItem(ctx context.Context, orderID, itemID string) error {
	return ps.store.RunAtomic(ctx, func(ctx context.Context) error {
		order, err := ps.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		item, ok := order.Item(itemID)
		if !ok {
			return models.ErrDataNotFound
		}
		if order.TransactionID == "" {
			return models.NewConsistencyError("order %s has no linked ledger to refund against", orderID)
		}

		tx, err := ps.txs.GetByReference(ctx, order.TransactionID)
		if err != nil {
			return models.NewConsistencyError("ledger %s missing for order %s", order.TransactionID, orderID)
		}
		ledgerItem, ok := tx.Item(itemID)
		if !ok {
			return models.NewConsistencyError("ledger %s has no item for order item %s", tx.ID, itemID)
		}

		// idempotency gate
		if ledgerItem.RefundStatus != models.RefundStatusNone {
			logger.Log.Debug("refund already underway",
				zap.String("order", orderID),
				zap.String("item", itemID),
				zap.String("refund_status", ledgerItem.RefundStatus))
			return nil
		}

		ledgerItem.RefundStatus = models.RefundStatusPending
		item.RefundStatus = models.RefundStatusPending
		item.RefundedAmount = item.Amount()

		// seller gives back their recorded share
		if err := ps.debit(ctx, ledgerItem.SellerID, ledgerItem.SellerShare,
			fmt.Sprintf("refund for order %s", orderID)); err != nil {
			return err
		}

		// platform gives back its prorated share of fees and commission
		var itemsTotal float64
		for _, it := range tx.Items {
			if !it.Cancelled {
				itemsTotal += it.Amount
			}
		}
		platformShare := ledgerItem.PlatformCommission
		if itemsTotal > 0 {
			platformShare += tx.ServiceFee * (ledgerItem.Amount / itemsTotal)
		}
		if err := ps.debit(ctx, ps.platformID, platformShare,
			fmt.Sprintf("refund for order %s", orderID)); err != nil {
			return err
		}

		if err := ps.txs.SaveTransaction(ctx, tx); err != nil {
			return err
		}
		if err := ps.orders.UpdateItem(ctx, item); err != nil {
			return err
		}

		if err := ps.notify(ctx, order.BuyerID, models.NotifyRefundInitiated,
			fmt.Sprintf("Refund of %.2f initiated for your order %s", item.RefundedAmount, orderID), ""); err != nil {
			return err
		}
		return ps.notify(ctx, ledgerItem.SellerID, models.NotifyRefundInitiated,
			fmt.Sprintf("A refund was initiated on order %s", orderID), order.BuyerID)
	})
}

// PayoutSeller transfers a seller's settled earnings for one transaction.
// The item named by orderItemID anchors the seller; all of that seller's
// items in the transaction that are delivered and still pending are paid in
// one aggregate. A non-pending anchor item makes the call a no-op.
func (ps *PayoutService) PayoutSeller(ctx context.Context, transactionID, orderItemID string) error {
	return ps.store.RunAtomic(ctx, func(ctx context.Context) error {
		tx, err := ps.txs.GetByReference(ctx, transactionID)
		if err != nil {
			return err
		}
		anchor, ok := tx.Item(orderItemID)
		if !ok {
			return models.NewConsistencyError("ledger %s has no item for order item %s", tx.ID, orderItemID)
		}
		if anchor.PayoutStatus != models.PayoutStatusManualPending {
			return nil
		}

		order, err := ps.orders.GetOrderByID(ctx, tx.OrderID)
		if err != nil {
			return models.NewConsistencyError("order %s missing for ledger %s", tx.OrderID, tx.ID)
		}

		sellerID := anchor.SellerID
		var aggregate float64
		for i := range tx.Items {
			it := &tx.Items[i]
			if it.SellerID != sellerID || it.Cancelled {
				continue
			}
			if it.PayoutStatus != models.PayoutStatusManualPending {
				continue
			}
			if it.RefundStatus != models.RefundStatusNone {
				// refunded money never pays out
				continue
			}
			orderItem, ok := order.Item(it.OrderItemID)
			if !ok || orderItem.Status != models.ItemStatusDelivered {
				continue
			}
			aggregate += it.OwedAmount
			it.PayoutStatus = models.PayoutStatusTransferred
			it.OwedAmount = 0
		}

		if aggregate == 0 {
			// nothing delivered yet
			return nil
		}

		note := fmt.Sprintf("payout for order %s", tx.OrderID)
		if err := ps.debit(ctx, ps.platformID, aggregate, note); err != nil {
			return err
		}
		if err := ps.debit(ctx, sellerID, aggregate, note); err != nil {
			return err
		}

		if err := ps.txs.SaveTransaction(ctx, tx); err != nil {
			return err
		}

		return ps.notify(ctx, sellerID, models.NotifyPayoutComplete,
			fmt.Sprintf("Payout of %.2f for order %s is on its way", aggregate, tx.OrderID), "")
	})
}

// ReverseOrder reverses a completed ledger after a full-order cancellation:
// every seller gives back their full share, the platform gives back the
// delivery fee and commission (the service fee is kept), and every item's
// refund is marked pending. Items already unwound by a per-item refund are
// skipped. Guarded by the reversal flag, so racing cancellations reverse
// exactly once.
func (ps *PayoutService) ReverseOrder(ctx context.Context, orderID string) error {
	return ps.store.RunAtomic(ctx, func(ctx context.Context) error {
		order, err := ps.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.TransactionID == "" {
			return nil
		}
		tx, err := ps.txs.GetByReference(ctx, order.TransactionID)
		if err != nil {
			return models.NewConsistencyError("ledger %s missing for order %s", order.TransactionID, orderID)
		}
		if tx.IsReversed {
			return nil
		}
		if tx.Status != models.TxStatusCompleted {
			// nothing was settled, nothing to reverse
			return nil
		}

		tx.IsReversed = true
		tx.Status = models.TxStatusReversed

		note := fmt.Sprintf("reversal of order %s", orderID)
		sellers := make(map[string]bool)
		var commissionBack float64
		for i := range tx.Items {
			it := &tx.Items[i]
			if it.Cancelled {
				continue
			}
			if it.RefundStatus != models.RefundStatusNone {
				// already unwound by a per-item refund
				continue
			}
			it.RefundStatus = models.RefundStatusPending
			if err := ps.debit(ctx, it.SellerID, it.SellerShare, note); err != nil {
				return err
			}
			commissionBack += it.PlatformCommission
			sellers[it.SellerID] = true
		}

		if err := ps.debit(ctx, ps.platformID, tx.DeliveryFee+commissionBack, note); err != nil {
			return err
		}

		if err := ps.txs.SaveTransaction(ctx, tx); err != nil {
			return err
		}

		if err := ps.notify(ctx, order.BuyerID, models.NotifyOrderCancelled,
			fmt.Sprintf("Order %s was cancelled; a refund of %.2f is being processed",
				orderID, tx.TotalAmount-tx.ServiceFee), ""); err != nil {
			return err
		}
		for sellerID := range sellers {
			if err := ps.notify(ctx, sellerID, models.NotifyOrderCancelled,
				fmt.Sprintf("Order %s was cancelled in full", orderID), order.BuyerID); err != nil {
				return err
			}
		}
		return ps.notify(ctx, ps.platformID, models.NotifyOrderCancelled,
			fmt.Sprintf("Order %s fully cancelled and ledger %s reversed", orderID, tx.ID), order.BuyerID)
	})
}

func (ps *PayoutService) debit(ctx context.Context, userID string, amount float64, note string) error {
	if err := ps.wallets.AdjustBalance(ctx, userID, -amount); err != nil {
		return err
	}
	_, err := ps.wallets.AppendHistory(ctx, &models.PayoutEntry{
		UserID: userID,
		Amount: -amount,
		Note:   note,
	})
	return err
}

func (ps *PayoutService) notify(ctx context.Context, recipient, kind, content, causedBy string) error {
	return ps.outbox.Enqueue(ctx, &models.Notification{
		RecipientID: recipient,
		Kind:        kind,
		Content:     content,
		CausedBy:    causedBy,
	})
}
