package models

import (
	"time"
)

// Wallet holds the running balance of one account. The settlement engine is
// the only writer of order-related balance deltas.
type Wallet struct {
	UserID  string
	Balance float64
}

// PayoutEntry is one signed movement in an account's append-only payout
// history.
type PayoutEntry struct {
	ID        uint64
	UserID    string
	Amount    float64
	Note      string
	CreatedAt time.Time
}

// notification kinds emitted by the settlement engine
const (
	NotifyOrderPaid       = "order_paid"
	NotifyPaymentFailed   = "payment_failed"
	NotifyOrderCancelled  = "order_cancelled"
	NotifyRefundInitiated = "refund_initiated"
	NotifyPayoutComplete  = "payout_complete"
	NotifyItemSold        = "item_sold"
	NotifyItemDelivered   = "item_delivered"
)

// outbox entry status
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
)

// Notification is an outbox entry. It is enqueued inside the same atomic
// scope as the financial writes it announces and delivered after commit by
// the outbox worker, so a lost dispatch never rolls back settled money.
type Notification struct {
	ID          uint64
	RecipientID string
	Kind        string
	Content     string
	CausedBy    string
	Status      string
	CreatedAt   time.Time
	SentAt      *time.Time
}

// Listing is the slice of a marketplace listing the settlement engine needs:
// reserved stock accounting. Listing CRUD lives elsewhere.
type Listing struct {
	ID       string
	SellerID string
	Title    string
	Price    float64
	Stock    int
}
