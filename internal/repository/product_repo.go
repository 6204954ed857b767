package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/user/pricetracker-service/internal/entity"
)

// ErrProductNotFound is returned when no product matches the given identity.
var ErrProductNotFound = errors.New("product not found")

// ProductUpsert carries the fields written on every successful ingestion.
// OwnerID and URL identify the row; everything else is overwritten on conflict.
type ProductUpsert struct {
	OwnerID  int64
	URL      string
	Name     string
	Price    decimal.Decimal
	Currency string
	ImageURL string
}

// ProductRepository defines the contract for storing and retrieving products.
type ProductRepository interface {
	// FindByOwnerAndURL returns the product identified by (ownerID, canonical URL),
	// or ErrProductNotFound.
	FindByOwnerAndURL(ctx context.Context, ownerID int64, url string) (*entity.Product, error)
	// FindByID returns the product with the given id, or ErrProductNotFound.
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	// Upsert atomically inserts the product or, on conflict of (owner_id, url),
	// overwrites name, current_price, currency, image_url and updated_at.
	// It returns the stored row. The operation must be a single statement
	// against the store, not a read-modify-write.
	Upsert(ctx context.Context, p ProductUpsert) (*entity.Product, error)
	// Delete removes a product owned by ownerID. Returns ErrProductNotFound
	// when no matching row exists. History rows cascade at the store level.
	Delete(ctx context.Context, ownerID, productID int64) error
}
