package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product mirrors the `products` PostgreSQL table schema.
//
// Identity is (OwnerID, URL) where URL is the canonical form produced by the
// canonical package. The unique constraint on that pair is the sole mechanism
// preventing duplicate products for the same logical item.
type Product struct {
	ID           int64
	OwnerID      int64
	URL          string
	Name         string
	CurrentPrice decimal.Decimal
	Currency     string
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
