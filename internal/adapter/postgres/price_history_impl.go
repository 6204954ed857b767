package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/user/pricetracker-service/internal/entity"
)

// PriceHistoryRepoImpl provides a concrete implementation for the
// PriceHistoryRepository interface using PostgreSQL. The table is append-only;
// this type exposes no update or delete.
type PriceHistoryRepoImpl struct {
	db *pgxpool.Pool
}

// NewPriceHistoryRepo creates a new instance of PriceHistoryRepoImpl.
func NewPriceHistoryRepo(db *pgxpool.Pool) *PriceHistoryRepoImpl {
	return &PriceHistoryRepoImpl{db: db}
}

// Insert appends one price observation, stamped with the database clock.
func (r *PriceHistoryRepoImpl) Insert(ctx context.Context, productID int64, price decimal.Decimal, currency string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO price_history (product_id, price, currency) VALUES ($1, $2, $3);`,
		productID, price, currency)
	if err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	return nil
}

// ListByProduct returns the full timeline for a product, oldest first. A
// product with no observations yields an empty slice.
func (r *PriceHistoryRepoImpl) ListByProduct(ctx context.Context, productID int64) ([]entity.PriceHistoryRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, price, currency, checked_at
		 FROM price_history
		 WHERE product_id = $1
		 ORDER BY checked_at ASC;`, productID)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	records := make([]entity.PriceHistoryRecord, 0)
	for rows.Next() {
		var rec entity.PriceHistoryRecord
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Price, &rec.Currency, &rec.CheckedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
