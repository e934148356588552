package models

import "time"

// order status
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusDisputed  = "disputed"
)

// order item status
const (
	ItemStatusPending   = "pending"
	ItemStatusShipped   = "shipped"
	ItemStatusDelivered = "delivered"
	ItemStatusCancelled = "cancelled"
)

// refund status of an order item or a ledger item
const (
	RefundStatusNone     = "none"
	RefundStatusPending  = "pending"
	RefundStatusRefunded = "refunded"
)

// orderRank maps each order status to its position in the forward-only
// lifecycle. Cancelled and disputed are reachable from any non-terminal state.
var orderRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusPaid:      1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

// Order is one purchase request, owned by the buyer who created it.
// TransactionID loosely links the order to its live payment attempt; it is
// empty while no attempt exists or after a failed attempt was unlinked.
type Order struct {
	ID              string
	BuyerID         string
	TotalAmount     float64
	DeliveryFee     float64
	Status          string
	DeliveryAddress string
	TransactionID   string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is one line item of an order. Cancelled and Rejected, once set,
// are permanent.
type OrderItem struct {
	ID             string
	OrderID        string
	SellerID       string
	ListingID      string
	Quantity       int
	UnitPrice      float64
	Status         string
	Cancelled      bool
	CancelReason   string
	Rejected       bool
	RejectReason   string
	RefundStatus   string
	RefundedAmount float64
}

// Amount returns the monetary value of the line item.
func (it *OrderItem) Amount() float64 {
	return it.UnitPrice * float64(it.Quantity)
}

// CanTransition reports whether an order may move from its current status to
// next. Orders only move forward; cancelled/disputed are allowed from any
// state before full delivery; terminal states never change.
func (o *Order) CanTransition(next string) bool {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusDelivered {
		return false
	}
	if next == OrderStatusCancelled || next == OrderStatusDisputed {
		return true
	}
	cur, ok := orderRank[o.Status]
	if !ok {
		return false
	}
	nxt, ok := orderRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// ActiveItems returns the items that are neither cancelled nor rejected.
func (o *Order) ActiveItems() []OrderItem {
	var items []OrderItem
	for _, it := range o.Items {
		if !it.Cancelled && !it.Rejected {
			items = append(items, it)
		}
	}
	return items
}

// ItemsTotal returns the sum of all non-cancelled item amounts.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, it := range o.Items {
		if it.Cancelled {
			continue
		}
		total += it.Amount()
	}
	return total
}

// AllItemsCancelled reports whether every line item has been cancelled.
func (o *Order) AllItemsCancelled() bool {
	for _, it := range o.Items {
		if !it.Cancelled {
			return false
		}
	}
	return len(o.Items) > 0
}

// Item returns the line item with the given id.
func (o *Order) Item(itemID string) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}
