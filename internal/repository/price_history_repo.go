package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/user/pricetracker-service/internal/entity"
)

// PriceHistoryRepository defines the interface for the append-only price
// ledger. Rows are never updated or deleted through this interface.
type PriceHistoryRepository interface {
	// Insert appends one price observation for a product, stamped with the
	// store's current time.
	Insert(ctx context.Context, productID int64, price decimal.Decimal, currency string) error
	// ListByProduct returns all observations for a product ordered by
	// checked_at ascending. A product with no observations yields an empty
	// slice, not an error.
	ListByProduct(ctx context.Context, productID int64) ([]entity.PriceHistoryRecord, error)
}
