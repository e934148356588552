package service

import (
	"context"

	"github.com/beifitycom/backend/internal/gateway"
	"github.com/beifitycom/backend/internal/models"
)

// AtomicStore runs units of work against the storage layer. Everything
// executed inside RunAtomic sees one serializable multi-document scope;
// the scope is retried with backoff when the store aborts it with a
// transient conflict. Nested calls join the enclosing scope.
type AtomicStore interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository is the interface for interacting with order-related data
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrdersByBuyerID(ctx context.Context, buyerID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	LinkTransaction(ctx context.Context, orderID, transactionID string) error
	UnlinkTransaction(ctx context.Context, orderID string) error
	UpdateItem(ctx context.Context, item *models.OrderItem) error
}

// TransactionRepository is the interface for interacting with the
// settlement ledger
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	GetByReference(ctx context.Context, ref string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteIfPending(ctx context.Context, id string) error
}

// WalletRepository is the interface for balances and payout history
type WalletRepository interface {
	GetWallet(ctx context.Context, userID string) (models.Wallet, error)
	AdjustBalance(ctx context.Context, userID string, delta float64) error
	AppendHistory(ctx context.Context, entry *models.PayoutEntry) (*models.PayoutEntry, error)
	GetHistoryByUserID(ctx context.Context, userID string) ([]models.PayoutEntry, error)
}

// InventoryRepository is the interface for listing stock and pending-order
// counters
type InventoryRepository interface {
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	AdjustStock(ctx context.Context, listingID string, delta int) error
	AdjustPendingOrders(ctx context.Context, userID string, delta int) error
}

// OutboxRepository is the interface for the notification outbox
type OutboxRepository interface {
	Enqueue(ctx context.Context, n *models.Notification) error
	GetPending(ctx context.Context, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id uint64) error
}

// Gateway is the interface for the Swift payment gateway
type Gateway interface {
	InitiatePush(ctx context.Context, req gateway.PushRequest) (*gateway.PushResponse, error)
	FindTransaction(ctx context.Context, externalRef string) (*gateway.Transaction, error)
}
