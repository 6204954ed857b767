package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/pricetracker-service/internal/entity"
	"github.com/user/pricetracker-service/internal/repository"
)

const productColumns = `id, owner_id, url, name, current_price, currency, image_url, created_at, updated_at`

// ProductRepoImpl provides a concrete implementation for the ProductRepository
// interface using PostgreSQL.
type ProductRepoImpl struct {
	db *pgxpool.Pool
}

// NewProductRepo creates a new instance of ProductRepoImpl.
func NewProductRepo(db *pgxpool.Pool) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

// FindByOwnerAndURL retrieves the product identified by (ownerID, url).
func (r *ProductRepoImpl) FindByOwnerAndURL(ctx context.Context, ownerID int64, url string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner_id = $1 AND url = $2;`
	return scanProduct(r.db.QueryRow(ctx, query, ownerID, url))
}

// FindByID retrieves a product by primary key.
func (r *ProductRepoImpl) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

// Upsert inserts the product or overwrites the mutable columns on conflict of
// (owner_id, url). The single INSERT ... ON CONFLICT statement is what makes
// concurrent submissions for the same identity converge on one row.
func (r *ProductRepoImpl) Upsert(ctx context.Context, p repository.ProductUpsert) (*entity.Product, error) {
	query := `
		INSERT INTO products (owner_id, url, name, current_price, currency, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, url) DO UPDATE SET
			name = EXCLUDED.name,
			current_price = EXCLUDED.current_price,
			currency = EXCLUDED.currency,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING ` + productColumns + `;`

	product, err := scanProduct(r.db.QueryRow(ctx, query,
		p.OwnerID, p.URL, p.Name, p.Price, p.Currency, p.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	return product, nil
}

// Delete removes a product owned by ownerID; price history rows cascade via
// the foreign key.
func (r *ProductRepoImpl) Delete(ctx context.Context, ownerID, productID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND owner_id = $2;`, productID, ownerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.URL,
		&p.Name,
		&p.CurrentPrice,
		&p.Currency,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
