// Package firecrawl implements the Extractor interface against a
// Firecrawl-compatible scrape API. The service reads the live page and fills
// the requested schema; everything it returns is treated as untrusted input
// and revalidated locally.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/user/pricetracker-service/internal/entity"
	"github.com/user/pricetracker-service/internal/repository"
)

// extractionPrompt tells the service how to read prices and currency symbols
// out of arbitrary page markup. It is configuration, not logic: updating it
// never requires touching the validation below.
const extractionPrompt = `You are extracting product data from an e-commerce website.

Extract and return ONLY valid JSON with these fields:
- productName: (string) The product title/name. Look in h1, title, or "product-title" elements. REQUIRED, cannot be empty
- currentPrice: (number) JUST the numeric price value. Look for large numbers, prices in ₹ or $ symbols. REQUIRED, must be > 0. If you see "₹1,299" extract as 1299
- currencyCode: (string) The currency (INR for ₹, USD for $, EUR for €, GBP for £). REQUIRED
- productImageUrl: (string, optional) Main product image URL

If any required field is empty or 0, the extraction failed.
Return valid JSON only.`

// extractionSchema is the fixed output schema requested from the service:
// name, price and currency required, image optional.
var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"productName":     map[string]any{"type": "string"},
		"currentPrice":    map[string]any{"type": "number"},
		"currencyCode":    map[string]any{"type": "string"},
		"productImageUrl": map[string]any{"type": "string"},
	},
	"required": []string{"productName", "currentPrice", "currencyCode"},
}

type scrapeRequest struct {
	URL             string       `json:"url"`
	Formats         []string     `json:"formats"`
	OnlyMainContent bool         `json:"onlyMainContent"`
	Extract         *extractSpec `json:"extract,omitempty"`
}

type extractSpec struct {
	Prompt string         `json:"prompt"`
	Schema map[string]any `json:"schema"`
}

type scrapeResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    *scrapeData `json:"data,omitempty"`
}

type scrapeData struct {
	Extract *rawExtract `json:"extract,omitempty"`
}

// rawExtract keeps the fields untyped: the service's schema enforcement is
// not trusted, so types are checked during validation.
type rawExtract struct {
	ProductName     any `json:"productName"`
	CurrentPrice    any `json:"currentPrice"`
	CurrencyCode    any `json:"currencyCode"`
	ProductImageURL any `json:"productImageUrl"`
}

// Client calls a Firecrawl-compatible scrape endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new extraction client. timeout bounds the whole scrape
// call; on expiry the call fails as an extraction error and is never retried
// here.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Extract issues one scrape request for pageURL and validates the returned
// payload. No caching, no retries.
func (c *Client) Extract(ctx context.Context, pageURL string) (*entity.ExtractedPayload, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"extract"},
		OnlyMainContent: false, // dynamic price widgets often live outside the main block
		Extract: &extractSpec{
			Prompt: extractionPrompt,
			Schema: extractionSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", repository.ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", repository.ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", repository.ErrExtractionFailed, resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var sr scrapeResponse
	if err := decoder.Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", repository.ErrExtractionFailed, err)
	}
	if !sr.Success {
		return nil, fmt.Errorf("%w: service reported failure: %s", repository.ErrExtractionFailed, sr.Error)
	}
	if sr.Data == nil || sr.Data.Extract == nil {
		return nil, fmt.Errorf("%w: no extract data in response", repository.ErrExtractionFailed)
	}

	payload, err := validatePayload(sr.Data.Extract)
	if err != nil {
		c.logger.Warn("extraction payload failed validation",
			zap.String("url", pageURL),
			zap.Error(err))
		return nil, err
	}
	return payload, nil
}

// validatePayload enforces the required-field and type rules locally,
// independent of what the service claims as valid.
func validatePayload(raw *rawExtract) (*entity.ExtractedPayload, error) {
	name, _ := raw.ProductName.(string)
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 3 {
		return nil, fmt.Errorf("%w: got %q", repository.ErrInvalidProductName, name)
	}

	price, err := parsePrice(raw.CurrentPrice)
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("%w: got %v", repository.ErrInvalidPrice, raw.CurrentPrice)
	}

	currency, _ := raw.CurrencyCode.(string)
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return nil, fmt.Errorf("%w: got %v", repository.ErrInvalidCurrency, raw.CurrencyCode)
	}

	payload := &entity.ExtractedPayload{
		ProductName:  name,
		CurrentPrice: price,
		CurrencyCode: currency,
	}
	if img, ok := raw.ProductImageURL.(string); ok {
		payload.ProductImageURL = strings.TrimSpace(img)
	}
	return payload, nil
}

func parsePrice(v any) (decimal.Decimal, error) {
	num, ok := v.(json.Number)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("price is not a JSON number")
	}
	return decimal.NewFromString(num.String())
}
