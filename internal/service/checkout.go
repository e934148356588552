package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/beifitycom/backend/internal/gateway"
	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService is the settlement orchestrator: it drives place-order,
// retry-payment, cancellation and delivery flows, composing the order
// aggregate, the ledger and the gateway adapter. All storage writes happen
// inside atomic scopes; gateway calls happen between scopes, never inside
// one.
type CheckoutService struct {
	store     AtomicStore
	orders    OrderRepository
	txs       TransactionRepository
	inventory InventoryRepository
	outbox    OutboxRepository
	gateway   Gateway
	payouts   *PayoutService
}

// NewCheckoutService creates new CheckoutService instance
func NewCheckoutService(store AtomicStore, orders OrderRepository, txs TransactionRepository,
	inventory InventoryRepository, outbox OutboxRepository, gw Gateway, payouts *PayoutService) *CheckoutService {
	return &CheckoutService{
		store:     store,
		orders:    orders,
		txs:       txs,
		inventory: inventory,
		outbox:    outbox,
		gateway:   gw,
		payouts:   payouts,
	}
}

// PlaceOrderInput is a buyer's purchase request.
type PlaceOrderInput struct {
	BuyerID         string
	BuyerName       string
	Phone           string
	DeliveryAddress string
	DeliveryFee     float64
	Items           []PlaceOrderItemInput
}

// PlaceOrderItemInput selects one listing and quantity.
type PlaceOrderItemInput struct {
	ListingID string
	Quantity  int
}

// PlaceOrder validates the request, reserves inventory, creates the order
// with its line items and starts the payment attempt. The returned
// reference is usable with VerifyPayment; the call never waits for the
// buyer to complete the PIN prompt.
func (cs *CheckoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, string, error) {
	// reject bad input before any external call or storage write
	phone, err := gateway.NormalizePhone(in.Phone)
	if err != nil {
		return nil, "", err
	}
	if len(in.Items) == 0 {
		return nil, "", models.NewValidationError("items", "order has no items")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, "", models.NewValidationError("quantity", "must be positive")
		}
	}
	if in.DeliveryFee < 0 {
		return nil, "", models.NewValidationError("deliveryFee", "must not be negative")
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		BuyerID:         in.BuyerID,
		DeliveryFee:     in.DeliveryFee,
		Status:          models.OrderStatusPending,
		DeliveryAddress: in.DeliveryAddress,
	}

	err = cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		sellers := make(map[string]bool)
		var itemsTotal float64

		for _, it := range in.Items {
			listing, err := cs.inventory.GetListing(ctx, it.ListingID)
			if err != nil {
				if errors.Is(err, models.ErrDataNotFound) {
					return models.NewValidationError("listing", "listing "+it.ListingID+" not found")
				}
				return err
			}
			if err := cs.inventory.AdjustStock(ctx, it.ListingID, -it.Quantity); err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				SellerID:  listing.SellerID,
				ListingID: listing.ID,
				Quantity:  it.Quantity,
				UnitPrice: listing.Price,
				Status:    models.ItemStatusPending,
			})
			itemsTotal += listing.Price * float64(it.Quantity)
			sellers[listing.SellerID] = true
		}

		order.TotalAmount = itemsTotal + in.DeliveryFee

		if _, err := cs.orders.CreateOrder(ctx, order); err != nil {
			return err
		}

		if err := cs.inventory.AdjustPendingOrders(ctx, in.BuyerID, 1); err != nil {
			return err
		}
		for sellerID := range sellers {
			if err := cs.inventory.AdjustPendingOrders(ctx, sellerID, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	ref, err := cs.startPayment(ctx, order, phone, in.BuyerName)
	if err != nil {
		return nil, "", err
	}

	return order, ref, nil
}

// RetryPayment starts a fresh payment attempt for a pending order whose
// previous attempt failed and was unlinked.
func (cs *CheckoutService) RetryPayment(ctx context.Context, buyerID, orderID, phoneInput string) (string, error) {
	phone, err := gateway.NormalizePhone(phoneInput)
	if err != nil {
		return "", err
	}

	var order *models.Order
	err = cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		order, err = cs.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return models.ErrOrderNotOwned
		}
		if order.Status != models.OrderStatusPending {
			return models.ErrOrderNotPending
		}
		if order.TransactionID != "" {
			// at most one non-failed transaction per order
			return models.ErrPaymentInFlight
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return cs.startPayment(ctx, order, phone, "")
}

// startPayment creates the ledger and issues the gateway push request.
// The ledger is created pending with a placeholder reference, so a gateway
// rejection can be rolled back fully; acceptance stores the gateway's real
// reference and moves the ledger to swift_initiated.
func (cs *CheckoutService) startPayment(ctx context.Context, order *models.Order, phone, customerName string) (string, error) {
	// amount invariant is checked before anything external happens
	if math.Abs(order.ItemsTotal()+order.DeliveryFee-order.TotalAmount) > models.AmountEpsilon {
		return "", models.NewConsistencyError("order %s total %.2f does not match items %.2f + delivery %.2f",
			order.ID, order.TotalAmount, order.ItemsTotal(), order.DeliveryFee)
	}

	tx := &models.Transaction{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		DeliveryFee: order.DeliveryFee,
		Status:      models.TxStatusPending,
	}
	tx.GatewayRef = "TEMP-" + tx.ID
	for _, it := range order.Items {
		if it.Cancelled {
			continue
		}
		tx.Items = append(tx.Items, models.TransactionItem{
			ID:           uuid.NewString(),
			OrderItemID:  it.ID,
			SellerID:     it.SellerID,
			Amount:       it.Amount(),
			PayoutStatus: models.PayoutStatusManualPending,
			RefundStatus: models.RefundStatusNone,
		})
	}

	err := cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		if _, err := cs.txs.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		return cs.orders.LinkTransaction(ctx, order.ID, tx.ID)
	})
	if err != nil {
		return "", err
	}

	resp, err := cs.gateway.InitiatePush(ctx, gateway.PushRequest{
		Amount:            int(math.Round(order.TotalAmount)),
		PhoneNumber:       phone,
		ExternalReference: tx.ID,
		CustomerName:      customerName,
	})
	if err != nil {
		// nothing external happened: delete the ledger and unlink it so the
		// buyer can retry with a fresh attempt
		rollbackErr := cs.store.RunAtomic(ctx, func(ctx context.Context) error {
			if err := cs.txs.DeleteIfPending(ctx, tx.ID); err != nil && !errors.Is(err, models.ErrDataNotFound) {
				return err
			}
			return cs.orders.UnlinkTransaction(ctx, order.ID)
		})
		if rollbackErr != nil {
			logger.Log.Error("payment rollback failed",
				zap.String("order", order.ID),
				zap.String("transaction", tx.ID),
				zap.Error(rollbackErr))
		}
		return "", err
	}

	err = cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		fresh, err := cs.txs.GetByReference(ctx, tx.ID)
		if err != nil {
			return err
		}
		if fresh.Status == models.TxStatusPending {
			fresh.Status = models.TxStatusSwiftInitiated
		}
		if resp.Reference != "" {
			fresh.GatewayRef = resp.Reference
		}
		return cs.txs.SaveTransaction(ctx, fresh)
	})
	if err != nil {
		return "", err
	}

	return tx.ID, nil
}

// CancelItem cancels one line item. Cancellation is permanent; cancelling
// an already cancelled item is a successful no-op. When the order's payment
// has settled the item is refunded; when every item ends up cancelled the
// order is cancelled and a completed ledger is reversed in full.
func (cs *CheckoutService) CancelItem(ctx context.Context, actorID, orderID, itemID, reason string) error {
	var (
		needRefund  bool
		needReverse bool
	)

	err := cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		needRefund, needReverse = false, false

		order, err := cs.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		item, ok := order.Item(itemID)
		if !ok {
			return models.ErrDataNotFound
		}
		if order.BuyerID != actorID && item.SellerID != actorID {
			return models.ErrOrderNotOwned
		}
		if item.Cancelled {
			return nil
		}
		if item.Status == models.ItemStatusDelivered {
			return models.NewValidationError("item", "delivered items cannot be cancelled")
		}

		item.Cancelled = true
		item.CancelReason = reason
		item.Status = models.ItemStatusCancelled
		if err := cs.orders.UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := cs.inventory.AdjustStock(ctx, item.ListingID, item.Quantity); err != nil {
			return err
		}

		settled := false
		if order.TransactionID != "" {
			tx, err := cs.txs.GetByReference(ctx, order.TransactionID)
			if err != nil {
				return models.NewConsistencyError("ledger %s missing for order %s", order.TransactionID, orderID)
			}
			settled = tx.Status == models.TxStatusCompleted
			if !settled {
				// payment not settled yet: mirror the cancellation so a later
				// settlement contributes nothing for this item
				if ledgerItem, ok := tx.Item(itemID); ok {
					ledgerItem.Cancelled = true
					if err := cs.txs.SaveTransaction(ctx, tx); err != nil {
						return err
					}
				}
			}
		}

		if order.AllItemsCancelled() {
			if err := cs.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled); err != nil {
				return err
			}
			needReverse = settled
		} else {
			needRefund = settled
		}

		return cs.outbox.Enqueue(ctx, &models.Notification{
			RecipientID: item.SellerID,
			Kind:        models.NotifyOrderCancelled,
			Content:     fmt.Sprintf("An item on order %s was cancelled", orderID),
			CausedBy:    actorID,
		})
	})
	if err != nil {
		return err
	}

	// money movement runs in its own scope; the reversal flag and the
	// refund-status gate make racing cancellations settle exactly once
	if needReverse {
		return cs.payouts.ReverseOrder(ctx, orderID)
	}
	if needRefund {
		return cs.payouts.RefundItem(ctx, orderID, itemID)
	}
	return nil
}

// MarkShipped records that the seller shipped an item.
func (cs *CheckoutService) MarkShipped(ctx context.Context, sellerID, orderID, itemID string) error {
	return cs.updateItemStatus(ctx, sellerID, orderID, itemID, models.ItemStatusShipped, models.OrderStatusShipped)
}

// MarkDelivered records that the seller handed an item over.
func (cs *CheckoutService) MarkDelivered(ctx context.Context, sellerID, orderID, itemID string) error {
	return cs.updateItemStatus(ctx, sellerID, orderID, itemID, models.ItemStatusDelivered, "")
}

func (cs *CheckoutService) updateItemStatus(ctx context.Context, sellerID, orderID, itemID, itemStatus, orderStatus string) error {
	return cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		order, err := cs.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		item, ok := order.Item(itemID)
		if !ok {
			return models.ErrDataNotFound
		}
		if item.SellerID != sellerID {
			return models.ErrOrderNotOwned
		}
		if item.Cancelled {
			return models.ErrItemCancelled
		}

		item.Status = itemStatus
		if err := cs.orders.UpdateItem(ctx, item); err != nil {
			return err
		}

		if orderStatus != "" && order.CanTransition(orderStatus) {
			if err := cs.orders.UpdateOrderStatus(ctx, orderID, orderStatus); err != nil {
				return err
			}
		}
		return nil
	})
}

// AcceptDelivery is the buyer confirming receipt of an item. The status
// change is the primary effect; the seller payout it triggers is
// supplementary, so a payout failure is logged instead of failing the
// acceptance.
func (cs *CheckoutService) AcceptDelivery(ctx context.Context, buyerID, orderID, itemID string) error {
	var transactionID string

	err := cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		order, err := cs.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return models.ErrOrderNotOwned
		}
		item, ok := order.Item(itemID)
		if !ok {
			return models.ErrDataNotFound
		}
		if item.Cancelled {
			return models.ErrItemCancelled
		}

		item.Status = models.ItemStatusDelivered
		if err := cs.orders.UpdateItem(ctx, item); err != nil {
			return err
		}

		done := true
		for _, it := range order.Items {
			if it.Cancelled {
				continue
			}
			if it.ID != item.ID && it.Status != models.ItemStatusDelivered {
				done = false
				break
			}
		}
		if done && order.CanTransition(models.OrderStatusDelivered) {
			if err := cs.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusDelivered); err != nil {
				return err
			}
		}

		transactionID = order.TransactionID

		return cs.outbox.Enqueue(ctx, &models.Notification{
			RecipientID: item.SellerID,
			Kind:        models.NotifyItemDelivered,
			Content:     fmt.Sprintf("Delivery of an item on order %s was confirmed", orderID),
			CausedBy:    buyerID,
		})
	})
	if err != nil {
		return err
	}

	if transactionID != "" {
		if err := cs.payouts.PayoutSeller(ctx, transactionID, itemID); err != nil {
			logger.Log.Error("seller payout failed after delivery confirmation",
				zap.String("order", orderID),
				zap.String("item", itemID),
				zap.Error(err))
		}
	}
	return nil
}

// RejectDelivery is the buyer refusing a delivered item: the rejection is
// permanent, the order moves to disputed and a refund is initiated.
func (cs *CheckoutService) RejectDelivery(ctx context.Context, buyerID, orderID, itemID, reason string) error {
	err := cs.store.RunAtomic(ctx, func(ctx context.Context) error {
		order, err := cs.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return models.ErrOrderNotOwned
		}
		item, ok := order.Item(itemID)
		if !ok {
			return models.ErrDataNotFound
		}
		if item.Cancelled {
			return models.ErrItemCancelled
		}
		if item.Rejected {
			return nil
		}

		item.Rejected = true
		item.RejectReason = reason
		if err := cs.orders.UpdateItem(ctx, item); err != nil {
			return err
		}

		if order.CanTransition(models.OrderStatusDisputed) {
			if err := cs.orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusDisputed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return cs.payouts.RefundItem(ctx, orderID, itemID)
}

// ListOrders returns a buyer's orders, newest first.
func (cs *CheckoutService) ListOrders(ctx context.Context, buyerID string) ([]models.Order, error) {
	return cs.orders.GetOrdersByBuyerID(ctx, buyerID)
}

// GetOrder returns one order owned by the buyer.
func (cs *CheckoutService) GetOrder(ctx context.Context, buyerID, orderID string) (*models.Order, error) {
	order, err := cs.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, models.ErrOrderNotOwned
	}
	return order, nil
}
