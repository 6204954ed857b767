package entity

import "github.com/shopspring/decimal"

// ExtractedPayload is the validated output of the extraction service for one
// product page. It is never persisted as-is; only its fields flow into a
// Product on ingestion.
type ExtractedPayload struct {
	ProductName     string
	CurrentPrice    decimal.Decimal
	CurrencyCode    string
	ProductImageURL string // optional, empty when the page had no usable image
}
