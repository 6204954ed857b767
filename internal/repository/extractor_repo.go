package repository

import (
	"context"
	"errors"

	"github.com/user/pricetracker-service/internal/entity"
)

var (
	// ErrExtractionFailed covers network and service failures, non-success
	// responses and absent or malformed extraction payloads.
	ErrExtractionFailed = errors.New("extraction service failed")
	// ErrInvalidProductName is returned when the extracted name is missing or
	// shorter than three characters after trimming.
	ErrInvalidProductName = errors.New("extracted product name is missing or too short")
	// ErrInvalidPrice is returned when the extracted price is not a number
	// greater than zero.
	ErrInvalidPrice = errors.New("extracted price is not a positive number")
	// ErrInvalidCurrency is returned when the extracted currency code is empty
	// after trimming.
	ErrInvalidCurrency = errors.New("extracted currency code is missing")
)

// Extractor defines the contract for reading structured product data from a
// live page through the external extraction service.
//
// Implementations revalidate every field locally regardless of the service's
// own schema enforcement, issue exactly one request per call and never retry;
// retry policy, if any, belongs to the caller.
type Extractor interface {
	Extract(ctx context.Context, url string) (*entity.ExtractedPayload, error)
}
