package models

import (
	"math"
	"time"
)

// transaction (ledger) status
const (
	TxStatusPending        = "pending"
	TxStatusSwiftInitiated = "swift_initiated"
	TxStatusCompleted      = "completed"
	TxStatusFailed         = "failed"
	TxStatusReversed       = "reversed"
)

// payout status of a ledger item. Payouts are not gateway-automated, so
// every item starts manual_pending and is flipped by the payout engine.
const (
	PayoutStatusManualPending = "manual_pending"
	PayoutStatusTransferred   = "transferred"
)

// AmountEpsilon is the tolerance for monetary sum checks.
const AmountEpsilon = 0.01

// Transaction is the financial record of one payment attempt. It is tied to
// its order by the order's string id only, so a failed attempt can be
// unlinked and retried with a fresh record. At most one non-failed
// transaction exists per order.
type Transaction struct {
	ID            string
	OrderID       string
	TotalAmount   float64
	DeliveryFee   float64
	ServiceFee    float64
	NetForSellers float64
	GatewayRef    string
	Status        string
	IsReversed    bool
	Items         []TransactionItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransactionItem is the per-order-item financial split.
type TransactionItem struct {
	ID                 string
	TransactionID      string
	OrderItemID        string
	SellerID           string
	Amount             float64
	PlatformCommission float64
	SellerShare        float64
	OwedAmount         float64
	PayoutStatus       string
	RefundStatus       string
	Cancelled          bool
}

// FeeFunc maps a monetary amount to the flat service fee charged on it.
type FeeFunc func(amount float64) (float64, error)

// Recompute re-derives the service fee, total commission and per-item
// seller/platform split from the current item set. It runs on every save of
// the ledger and is idempotent: with unchanged inputs it produces identical
// numbers, so repeated saves never double-charge.
func (t *Transaction) Recompute(fee FeeFunc, commissionRate float64) error {
	var itemsTotal float64
	for i := range t.Items {
		it := &t.Items[i]
		if it.Cancelled {
			// cancelled items contribute nothing and drop back to default
			// payout/refund sub-status
			it.Amount = 0
			it.PlatformCommission = 0
			it.SellerShare = 0
			it.OwedAmount = 0
			it.PayoutStatus = PayoutStatusManualPending
			it.RefundStatus = RefundStatusNone
			continue
		}
		itemsTotal += it.Amount
	}

	serviceFee, err := fee(t.TotalAmount)
	if err != nil {
		return err
	}
	t.ServiceFee = serviceFee

	totalCommission := itemsTotal * commissionRate
	t.NetForSellers = math.Max(itemsTotal-serviceFee-totalCommission, 0)

	for i := range t.Items {
		it := &t.Items[i]
		if it.Cancelled {
			continue
		}
		if itemsTotal == 0 {
			// nothing to prorate; stale shares must not survive
			it.PlatformCommission = 0
			it.SellerShare = 0
			if it.PayoutStatus == PayoutStatusManualPending {
				it.OwedAmount = 0
			}
			continue
		}
		ratio := it.Amount / itemsTotal
		it.PlatformCommission = ratio * totalCommission
		it.SellerShare = ratio * t.NetForSellers
		if it.PayoutStatus == PayoutStatusManualPending {
			it.OwedAmount = it.SellerShare
		}
	}

	return nil
}

// TotalCommission returns the sum of platform commission over non-cancelled
// items.
func (t *Transaction) TotalCommission() float64 {
	var total float64
	for _, it := range t.Items {
		if !it.Cancelled {
			total += it.PlatformCommission
		}
	}
	return total
}

// ValidateAmounts checks that the sum of non-cancelled item amounts plus the
// delivery fee matches the transaction total. Verified at creation only.
func (t *Transaction) ValidateAmounts() error {
	var itemsTotal float64
	for _, it := range t.Items {
		if !it.Cancelled {
			itemsTotal += it.Amount
		}
	}
	if math.Abs(itemsTotal+t.DeliveryFee-t.TotalAmount) > AmountEpsilon {
		return NewConsistencyError("items total %.2f + delivery fee %.2f does not match order total %.2f",
			itemsTotal, t.DeliveryFee, t.TotalAmount)
	}
	return nil
}

// Item returns the ledger item for the given order item id.
func (t *Transaction) Item(orderItemID string) (*TransactionItem, bool) {
	for i := range t.Items {
		if t.Items[i].OrderItemID == orderItemID {
			return &t.Items[i], true
		}
	}
	return nil, false
}

// SellerShares groups non-cancelled item shares by seller.
func (t *Transaction) SellerShares() map[string]float64 {
	shares := make(map[string]float64)
	for _, it := range t.Items {
		if it.Cancelled {
			continue
		}
		shares[it.SellerID] += it.SellerShare
	}
	return shares
}
