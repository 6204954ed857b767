package response

import (
	"time"

	"github.com/user/pricetracker-service/internal/entity"
)

// ProductResponse is a DTO for a persisted product. Prices travel as strings
// to keep their exact decimal representation on the wire.
type ProductResponse struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Name         string    `json:"name"`
	CurrentPrice string    `json:"current_price"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddProductResponse reports the outcome of an ingestion.
type AddProductResponse struct {
	Status  string          `json:"status"` // "created" or "updated"
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// PricePointResponse is one observation in a product's price timeline.
type PricePointResponse struct {
	Price     string    `json:"price"`
	Currency  string    `json:"currency"`
	CheckedAt time.Time `json:"checked_at"`
}

// PriceHistoryResponse is the timeline for one product, oldest first.
type PriceHistoryResponse struct {
	ProductID int64                `json:"product_id"`
	History   []PricePointResponse `json:"history"`
}

// FromProduct maps a product entity to its DTO.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		URL:          p.URL,
		Name:         p.Name,
		CurrentPrice: p.CurrentPrice.String(),
		Currency:     p.Currency,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromHistory maps history records to the timeline DTO.
func FromHistory(productID int64, records []entity.PriceHistoryRecord) PriceHistoryResponse {
	points := make([]PricePointResponse, 0, len(records))
	for _, r := range records {
		points = append(points, PricePointResponse{
			Price:     r.Price.String(),
			Currency:  r.Currency,
			CheckedAt: r.CheckedAt,
		})
	}
	return PriceHistoryResponse{ProductID: productID, History: points}
}
