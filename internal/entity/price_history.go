package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistoryRecord mirrors the `price_history` PostgreSQL table schema.
//
// Records are append-only: the pipeline never updates or deletes them.
// Ordered by CheckedAt ascending they form the price timeline of a product.
type PriceHistoryRecord struct {
	ID        int64
	ProductID int64
	Price     decimal.Decimal
	Currency  string
	CheckedAt time.Time
}
