package repository

import (
	"context"
	"errors"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertOrderQuery = `
						INSERT INTO orders (id, buyer_id, total_amount, delivery_fee, status, delivery_address, transaction_id)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING created_at, updated_at
`
	insertOrderItemQuery = `
						INSERT INTO order_items (id, order_id, seller_id, listing_id, quantity, unit_price, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	selectOrderByIDQuery = `
						SELECT id, buyer_id, total_amount, delivery_fee, status, delivery_address, transaction_id, created_at, updated_at
						FROM orders
						WHERE id = $1
`
	selectOrdersByBuyerQuery = `
						SELECT id, buyer_id, total_amount, delivery_fee, status, delivery_address, transaction_id, created_at, updated_at
						FROM orders
						WHERE buyer_id = $1
						ORDER BY created_at DESC
`
	selectOrderItemsQuery = `
						SELECT id, order_id, seller_id, listing_id, quantity, unit_price, status,
							   cancelled, cancel_reason, rejected, reject_reason, refund_status, refunded_amount
						FROM order_items
						WHERE order_id = $1
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE id = $2
`
	updateOrderTransactionQuery = `
						UPDATE orders
						SET transaction_id = $1, updated_at = now()
						WHERE id = $2
`
	updateOrderItemQuery = `
						UPDATE order_items
						SET status = $1, cancelled = $2, cancel_reason = $3, rejected = $4,
							reject_reason = $5, refund_status = $6, refunded_amount = $7
						WHERE id = $8
`
)

// OrderRepository implements order persistence
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts a new order together with its line items
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.BuyerID, order.TotalAmount, order.DeliveryFee,
		order.Status, order.DeliveryAddress, order.TransactionID,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if or.db.IsUniqueViolation(err) {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	for _, it := range order.Items {
		if _, err := or.db.Exec(ctx, insertOrderItemQuery,
			it.ID, order.ID, it.SellerID, it.ListingID, it.Quantity, it.UnitPrice, it.Status,
		); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// GetOrderByID returns an order with its items
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, id).Scan(
		&order.ID, &order.BuyerID, &order.TotalAmount, &order.DeliveryFee,
		&order.Status, &order.DeliveryAddress, &order.TransactionID,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	items, err := or.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// GetOrdersByBuyerID returns a buyer's orders, newest first
func (or *OrderRepository) GetOrdersByBuyerID(ctx context.Context, buyerID string) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, selectOrdersByBuyerQuery, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		err = rows.Scan(
			&order.ID, &order.BuyerID, &order.TotalAmount, &order.DeliveryFee,
			&order.Status, &order.DeliveryAddress, &order.TransactionID,
			&order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := or.getItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (or *OrderRepository) getItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := or.db.Query(ctx, selectOrderItemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		it := models.OrderItem{}
		err = rows.Scan(
			&it.ID, &it.OrderID, &it.SellerID, &it.ListingID, &it.Quantity, &it.UnitPrice, &it.Status,
			&it.Cancelled, &it.CancelReason, &it.Rejected, &it.RejectReason, &it.RefundStatus, &it.RefundedAmount,
		)
		if err != nil {
			continue
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateOrderStatus updates the order status
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, status, orderID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// LinkTransaction sets the order's live payment attempt
func (or *OrderRepository) LinkTransaction(ctx context.Context, orderID, transactionID string) error {
	cmd, err := or.db.Exec(ctx, updateOrderTransactionQuery, transactionID, orderID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// UnlinkTransaction clears the order's payment attempt so a retry can
// create a fresh transaction
func (or *OrderRepository) UnlinkTransaction(ctx context.Context, orderID string) error {
	return or.LinkTransaction(ctx, orderID, "")
}

// UpdateItem persists line item status, flags and refund fields
func (or *OrderRepository) UpdateItem(ctx context.Context, it *models.OrderItem) error {
	cmd, err := or.db.Exec(ctx, updateOrderItemQuery,
		it.Status, it.Cancelled, it.CancelReason, it.Rejected,
		it.RejectReason, it.RefundStatus, it.RefundedAmount, it.ID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
