package service

import (
	"context"
	"testing"

	"github.com/beifitycom/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoListings() []*models.Listing {
	return []*models.Listing{
		{ID: "L1", SellerID: "alice", Title: "phone case", Price: 700, Stock: 3},
		{ID: "L2", SellerID: "bob", Title: "charger", Price: 500, Stock: 2},
	}
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	env := newTestEnv(twoListings()...)
	cs := env.checkout()

	order, ref, err := cs.PlaceOrder(context.Background(), PlaceOrderInput{
		BuyerID:     "buyer1",
		BuyerName:   "Jane",
		Phone:       "+254712345678",
		DeliveryFee: 100,
		Items: []PlaceOrderItemInput{
			{ListingID: "L1", Quantity: 1},
			{ListingID: "L2", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	assert.Equal(t, 1800.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	// stock reserved
	assert.Equal(t, 2, env.inventory.stock("L1"))
	assert.Equal(t, 0, env.inventory.stock("L2"))

	// ledger linked and moved past pending once the gateway accepted
	stored, err := env.orders.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, ref, stored.TransactionID)

	tx, err := env.txs.GetByReference(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusSwiftInitiated, tx.Status)
	assert.Equal(t, "SWIFT-"+ref, tx.GatewayRef)
	assert.Len(t, tx.Items, 2)

	// push request carried the normalized phone and the ledger id
	assert.Equal(t, "0712345678", env.gw.lastPush.PhoneNumber)
	assert.Equal(t, ref, env.gw.lastPush.ExternalReference)
	assert.Equal(t, 1800, env.gw.lastPush.Amount)
}

func TestCheckoutService_PlaceOrderValidation(t *testing.T) {
	env := newTestEnv(twoListings()...)
	cs := env.checkout()

	tests := []struct {
		name string
		in   PlaceOrderInput
	}{
		{
			name: "bad_phone",
			in: PlaceOrderInput{
				BuyerID: "buyer1", Phone: "12345",
				Items: []PlaceOrderItemInput{{ListingID: "L1", Quantity: 1}},
			},
		},
		{
			name: "no_items",
			in:   PlaceOrderInput{BuyerID: "buyer1", Phone: "0712345678"},
		},
		{
			name: "non_positive_quantity",
			in: PlaceOrderInput{
				BuyerID: "buyer1", Phone: "0712345678",
				Items: []PlaceOrderItemInput{{ListingID: "L1", Quantity: 0}},
			},
		},
		{
			name: "negative_delivery_fee",
			in: PlaceOrderInput{
				BuyerID: "buyer1", Phone: "0712345678", DeliveryFee: -1,
				Items: []PlaceOrderItemInput{{ListingID: "L1", Quantity: 1}},
			},
		},
		{
			name: "unknown_listing",
			in: PlaceOrderInput{
				BuyerID: "buyer1", Phone: "0712345678",
				Items: []PlaceOrderItemInput{{ListingID: "missing", Quantity: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := cs.PlaceOrder(context.Background(), tt.in)
			var validationErr *models.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// no order was created, no push was issued
	assert.Zero(t, env.gw.pushCalls)
	assert.Equal(t, 3, env.inventory.stock("L1"))
}

func TestCheckoutService_PlaceOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(twoListings()...)
	cs := env.checkout()

	_, _, err := cs.PlaceOrder(context.Background(), PlaceOrderInput{
		BuyerID: "buyer1",
		Phone:   "0712345678",
		Items:   []PlaceOrderItemInput{{ListingID: "L2", Quantity: 5}},
	})

	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Zero(t, env.gw.pushCalls)
}

func TestCheckoutService_PlaceOrderGatewayRejection(t *testing.T) {
	env := newTestEnv(twoListings()...)
	env.gw.pushErr = &models.GatewayError{Op: "push", Err: assert.AnError}
	cs := env.checkout()

	_, _, err := cs.PlaceOrder(context.Background(), PlaceOrderInput{
		BuyerID: "buyer1",
		Phone:   "0712345678",
		Items:   []PlaceOrderItemInput{{ListingID: "L1", Quantity: 1}},
	})

	var gwErr *models.GatewayError
	require.ErrorAs(t, err, &gwErr)

	// the ledger created for the attempt is rolled back and the order
	// unlinked, so the buyer can retry
	orders, err := env.orders.GetOrdersByBuyerID(context.Background(), "buyer1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Empty(t, orders[0].TransactionID)

	_, err = env.txs.GetByReference(context.Background(), orders[0].ID)
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestCheckoutService_RetryPayment(t *testing.T) {
	env := newTestEnv(twoListings()...)
	cs := env.checkout()

	order := &models.Order{
		ID:          "order1",
		BuyerID:     "buyer1",
		TotalAmount: 700,
		Status:      models.OrderStatusPending,
		Items: []models.OrderItem{
			{ID: "item1", OrderID: "order1", SellerID: "alice", ListingID: "L1", Quantity: 1, UnitPrice: 700, Status: models.ItemStatusPending},
		},
	}
	env.orders.put(order)

	ref, err := cs.RetryPayment(context.Background(), "buyer1", "order1", "0712345678")
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Equal(t, 1, env.gw.pushCalls)

	stored, err := env.orders.GetOrderByID(context.Background(), "order1")
	require.NoError(t, err)
	assert.Equal(t, ref, stored.TransactionID)

	// second retry while the attempt is live is refused
	_, err = cs.RetryPayment(context.Background(), "buyer1", "order1", "0712345678")
	assert.ErrorIs(t, err, models.ErrPaymentInFlight)
}

func TestCheckoutService_RetryPaymentGuards(t *testing.T) {
	env := newTestEnv()
	cs := env.checkout()

	env.orders.put(&models.Order{
		ID: "paid", BuyerID: "buyer1", Status: models.OrderStatusPaid, TotalAmount: 100,
		Items: []models.OrderItem{{ID: "i", OrderID: "paid", Quantity: 1, UnitPrice: 100}},
	})

	tests := []struct {
		name    string
		buyerID string
		orderID string
		wantErr error
	}{
		{name: "not_owner", buyerID: "someone-else", orderID: "paid", wantErr: models.ErrOrderNotOwned},
		{name: "not_pending", buyerID: "buyer1", orderID: "paid", wantErr: models.ErrOrderNotPending},
		{name: "unknown_order", buyerID: "buyer1", orderID: "missing", wantErr: models.ErrDataNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cs.RetryPayment(context.Background(), tt.buyerID, tt.orderID, "0712345678")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckoutService_CancelItemBeforeSettlement(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	require.NoError(t, cs.CancelItem(context.Background(), "buyer1", "order1", "item2", "changed my mind"))

	// stock restored, ledger item mirrored as cancelled
	assert.Equal(t, 1, env.inventory.stock("L2"))

	tx, err := env.txs.GetByReference(context.Background(), "tx1")
	require.NoError(t, err)
	ledgerItem, ok := tx.Item("item2")
	require.True(t, ok)
	assert.True(t, ledgerItem.Cancelled)
	assert.Zero(t, ledgerItem.SellerShare)

	// a settlement arriving later pays only the surviving item
	_, err = env.reconciler().HandleWebhook(context.Background(), completedEvent("tx1"))
	require.NoError(t, err)
	assert.Zero(t, env.wallets.balance("bob"))
	assert.InDelta(t, 693.0, env.wallets.balance("alice"), models.AmountEpsilon)
}

func TestCheckoutService_CancelItemIdempotent(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	require.NoError(t, cs.CancelItem(context.Background(), "buyer1", "order1", "item2", "dup"))
	require.NoError(t, cs.CancelItem(context.Background(), "buyer1", "order1", "item2", "dup"))

	// stock restored exactly once
	assert.Equal(t, 1, env.inventory.stock("L2"))
}

func TestCheckoutService_CancelItemAfterSettlementRefunds(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	_, err := env.reconciler().HandleWebhook(context.Background(), completedEvent("tx1"))
	require.NoError(t, err)
	require.InDelta(t, 497.08, env.wallets.balance("bob"), models.AmountEpsilon)

	require.NoError(t, cs.CancelItem(context.Background(), "buyer1", "order1", "item2", "after payment"))

	// bob's settled share comes back out of his balance
	assert.InDelta(t, 0, env.wallets.balance("bob"), models.AmountEpsilon)

	order, err := env.orders.GetOrderByID(context.Background(), "order1")
	require.NoError(t, err)
	item, ok := order.Item("item2")
	require.True(t, ok)
	assert.Equal(t, models.RefundStatusPending, item.RefundStatus)
	assert.InDelta(t, 500.0, item.RefundedAmount, models.AmountEpsilon)

	assert.Contains(t, env.outbox.kinds("buyer1"), models.NotifyRefundInitiated)
}

func TestCheckoutService_CancelLastItemReversesSettledOrder(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	_, err := env.reconciler().HandleWebhook(context.Background(), completedEvent("tx1"))
	require.NoError(t, err)

	require.NoError(t, cs.CancelItem(context.Background(), "buyer1", "order1", "item1", "full cancel"))
	require.NoError(t, cs.CancelItem(context.Background(), "buyer1", "order1", "item2", "full cancel"))

	order, err := env.orders.GetOrderByID(context.Background(), "order1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	tx, err := env.txs.GetByReference(context.Background(), "tx1")
	require.NoError(t, err)
	assert.Equal(t, models.TxStatusReversed, tx.Status)
	assert.True(t, tx.IsReversed)

	// both sellers fully unwound; cancelling item1 alone ran a per-item
	// refund that also returned its prorated service-fee share, the
	// reversal then skips that item
	assert.InDelta(t, 0, env.wallets.balance("alice"), models.AmountEpsilon)
	assert.InDelta(t, 0, env.wallets.balance("bob"), models.AmountEpsilon)
	assert.InDelta(t, 7.0-7.0*700.0/1200.0, env.wallets.balance(testPlatformID), models.AmountEpsilon)
}

func TestCheckoutService_CancelDeliveredItemRefused(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	order, _ := seedAwaitingPayment(t, env)
	order.Items[0].Status = models.ItemStatusDelivered
	env.orders.put(order)
	cs := env.checkout()

	err := cs.CancelItem(context.Background(), "buyer1", "order1", "item1", "too late")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCheckoutService_AcceptDeliveryPaysSeller(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	_, err := env.reconciler().HandleWebhook(context.Background(), completedEvent("tx1"))
	require.NoError(t, err)
	aliceSettled := env.wallets.balance("alice")

	require.NoError(t, cs.MarkShipped(context.Background(), "alice", "order1", "item1"))
	require.NoError(t, cs.AcceptDelivery(context.Background(), "buyer1", "order1", "item1"))

	// alice's credited share is transferred out of the platform ledger
	assert.InDelta(t, aliceSettled-695.92, env.wallets.balance("alice"), models.AmountEpsilon)
	assert.InDelta(t, 7.0-695.92, env.wallets.balance(testPlatformID), models.AmountEpsilon)

	tx, err := env.txs.GetByReference(context.Background(), "tx1")
	require.NoError(t, err)
	ledgerItem, ok := tx.Item("item1")
	require.True(t, ok)
	assert.Equal(t, models.PayoutStatusTransferred, ledgerItem.PayoutStatus)
	assert.Zero(t, ledgerItem.OwedAmount)

	assert.Contains(t, env.outbox.kinds("alice"), models.NotifyPayoutComplete)
}

func TestCheckoutService_AcceptDeliveryCompletesOrder(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	_, err := env.reconciler().HandleWebhook(context.Background(), completedEvent("tx1"))
	require.NoError(t, err)

	require.NoError(t, cs.AcceptDelivery(context.Background(), "buyer1", "order1", "item1"))

	order, err := env.orders.GetOrderByID(context.Background(), "order1")
	require.NoError(t, err)
	assert.NotEqual(t, models.OrderStatusDelivered, order.Status)

	require.NoError(t, cs.AcceptDelivery(context.Background(), "buyer1", "order1", "item2"))

	order, err = env.orders.GetOrderByID(context.Background(), "order1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
}

func TestCheckoutService_RejectDeliveryRefundsAndDisputes(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	seedAwaitingPayment(t, env)
	cs := env.checkout()

	_, err := env.reconciler().HandleWebhook(context.Background(), completedEvent("tx1"))
	require.NoError(t, err)

	require.NoError(t, cs.RejectDelivery(context.Background(), "buyer1", "order1", "item1", "damaged"))

	order, err := env.orders.GetOrderByID(context.Background(), "order1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDisputed, order.Status)

	item, ok := order.Item("item1")
	require.True(t, ok)
	assert.True(t, item.Rejected)
	assert.Equal(t, models.RefundStatusPending, item.RefundStatus)

	// alice's share is pulled back
	assert.InDelta(t, 0, env.wallets.balance("alice"), models.AmountEpsilon)
}

func TestCheckoutService_MarkShippedGuards(t *testing.T) {
	env := newTestEnv(
		&models.Listing{ID: "L1", SellerID: "alice", Price: 700, Stock: 0},
		&models.Listing{ID: "L2", SellerID: "bob", Price: 500, Stock: 0},
	)
	order, _ := seedAwaitingPayment(t, env)
	order.Items[1].Cancelled = true
	env.orders.put(order)
	cs := env.checkout()

	assert.ErrorIs(t, cs.MarkShipped(context.Background(), "bob", "order1", "item1"), models.ErrOrderNotOwned)
	assert.ErrorIs(t, cs.MarkShipped(context.Background(), "bob", "order1", "item2"), models.ErrItemCancelled)
	assert.ErrorIs(t, cs.MarkShipped(context.Background(), "alice", "order1", "missing"), models.ErrDataNotFound)
}

func TestCheckoutService_GetOrderOwnership(t *testing.T) {
	env := newTestEnv()
	env.orders.put(&models.Order{ID: "order1", BuyerID: "buyer1"})
	cs := env.checkout()

	_, err := cs.GetOrder(context.Background(), "intruder", "order1")
	assert.ErrorIs(t, err, models.ErrOrderNotOwned)

	order, err := cs.GetOrder(context.Background(), "buyer1", "order1")
	require.NoError(t, err)
	assert.Equal(t, "order1", order.ID)
}
