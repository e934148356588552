package repository

import (
	"context"
	"errors"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	selectListingQuery = `
						SELECT id, seller_id, title, price, stock FROM listings
						WHERE id = $1
`
	adjustStockQuery = `
						UPDATE listings
						SET stock = stock + $1
						WHERE id = $2 AND stock + $1 >= 0
`
	adjustPendingOrdersQuery = `
						INSERT INTO account_stats (user_id, pending_orders)
						VALUES ($1, GREATEST($2, 0))
						ON CONFLICT (user_id) DO UPDATE
						SET pending_orders = GREATEST(account_stats.pending_orders + $2, 0)
`
)

// InventoryRepository covers the slice of listing data the settlement engine
// touches: reserved stock and pending-order counters.
type InventoryRepository struct {
	db *postgres.DB
}

// NewInventoryRepository creates new inventory repository instance
func NewInventoryRepository(db *postgres.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetListing returns a listing by id
func (ir *InventoryRepository) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	listing := models.Listing{}
	err := ir.db.QueryRow(ctx, selectListingQuery, id).Scan(
		&listing.ID, &listing.SellerID, &listing.Title, &listing.Price, &listing.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &listing, nil
}

// AdjustStock applies a signed delta to a listing's stock. A delta that
// would drive stock negative fails with ErrInsufficientStock.
func (ir *InventoryRepository) AdjustStock(ctx context.Context, listingID string, delta int) error {
	cmd, err := ir.db.Exec(ctx, adjustStockQuery, delta, listingID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrInsufficientStock
	}

	return nil
}

// AdjustPendingOrders applies a signed delta to an account's pending-order
// counter, clamping at zero
func (ir *InventoryRepository) AdjustPendingOrders(ctx context.Context, userID string, delta int) error {
	_, err := ir.db.Exec(ctx, adjustPendingOrdersQuery, userID, delta)
	return err
}
