package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/user/pricetracker-service/internal/delivery/http/handler"
	"github.com/user/pricetracker-service/internal/delivery/http/router"
	"github.com/user/pricetracker-service/internal/entity"
	"github.com/user/pricetracker-service/internal/repository"
	"github.com/user/pricetracker-service/internal/usecase"
	"github.com/user/pricetracker-service/pkg/metrics"
	"github.com/user/pricetracker-service/pkg/ratelimit"
)

const testJWTSecret = "handler-test-secret"

type fakeIngestor struct {
	ingestResult *entity.IngestResult
	ingestErr    error
	history      []entity.PriceHistoryRecord
	historyErr   error
	deleteErr    error

	lastOwnerID int64
	lastURL     string
	lastProduct int64
}

func (f *fakeIngestor) Ingest(ctx context.Context, ownerID int64, rawURL string) (*entity.IngestResult, error) {
	f.lastOwnerID = ownerID
	f.lastURL = rawURL
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return f.ingestResult, nil
}

func (f *fakeIngestor) ListHistory(ctx context.Context, ownerID, productID int64) ([]entity.PriceHistoryRecord, error) {
	f.lastOwnerID = ownerID
	f.lastProduct = productID
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeIngestor) DeleteProduct(ctx context.Context, ownerID, productID int64) error {
	f.lastOwnerID = ownerID
	f.lastProduct = productID
	return f.deleteErr
}

// newTestServer wires the fake ingestor through the real router, auth
// middleware and a miniredis-backed rate limiter.
func newTestServer(t *testing.T, ing usecase.Ingestor, rate, burst float64) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	limiter := ratelimit.New(rdb, "test:ratelimit:", rate, burst)
	m := metrics.New(prometheus.NewRegistry())
	h := handler.NewHandler(ing, zap.NewNop())

	srv := httptest.NewServer(router.New(h, m, limiter, testJWTSecret, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func bearerToken(t *testing.T, ownerID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   ownerID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, auth, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sampleProduct() *entity.Product {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &entity.Product{
		ID:           7,
		OwnerID:      42,
		URL:          "https://shop.example.com/item/123",
		Name:         "Wireless Headphones",
		CurrentPrice: decimal.RequireFromString("1299.00"),
		Currency:     "USD",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHandleAddProduct_Created(t *testing.T) {
	ing := &fakeIngestor{ingestResult: &entity.IngestResult{
		Outcome: entity.OutcomeCreated,
		Product: sampleProduct(),
	}}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodPost, "/api/products", bearerToken(t, "42"),
		`{"url":"https://shop.example.com/item/123?utm_source=news"}`)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if ing.lastOwnerID != 42 {
		t.Errorf("owner = %d, want 42", ing.lastOwnerID)
	}
	if ing.lastURL != "https://shop.example.com/item/123?utm_source=news" {
		t.Errorf("url passed to ingestor = %q", ing.lastURL)
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Product struct {
			ID           int64  `json:"id"`
			CurrentPrice string `json:"current_price"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "created" {
		t.Errorf("status = %q, want created", body.Status)
	}
	if body.Product.ID != 7 || body.Product.CurrentPrice != "1299.00" {
		t.Errorf("product = %+v", body.Product)
	}
}

func TestHandleAddProduct_Updated(t *testing.T) {
	ing := &fakeIngestor{ingestResult: &entity.IngestResult{
		Outcome: entity.OutcomeUpdated,
		Product: sampleProduct(),
	}}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodPost, "/api/products", bearerToken(t, "42"),
		`{"url":"https://shop.example.com/item/123"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "updated" {
		t.Errorf("status = %q, want updated", body.Status)
	}
}

func TestHandleAddProduct_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing url", usecase.ErrMissingURL, http.StatusBadRequest},
		{"extraction failed", repository.ErrExtractionFailed, http.StatusUnprocessableEntity},
		{"invalid name", repository.ErrInvalidProductName, http.StatusUnprocessableEntity},
		{"invalid price", repository.ErrInvalidPrice, http.StatusUnprocessableEntity},
		{"invalid currency", repository.ErrInvalidCurrency, http.StatusUnprocessableEntity},
		{"storage failure", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ing := &fakeIngestor{ingestErr: tc.err}
			srv := newTestServer(t, ing, 100, 100)

			resp := doRequest(t, srv, http.MethodPost, "/api/products", bearerToken(t, "42"),
				`{"url":"https://shop.example.com/item/123"}`)

			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestHandleAddProduct_RejectsWithoutToken(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodPost, "/api/products", "",
		`{"url":"https://shop.example.com/item/123"}`)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if ing.lastOwnerID != 0 {
		t.Errorf("ingestor was called for an unauthenticated request")
	}
}

func TestHandleAddProduct_InvalidBody(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodPost, "/api/products", bearerToken(t, "42"), `{not json`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleAddProduct_RateLimited(t *testing.T) {
	ing := &fakeIngestor{ingestResult: &entity.IngestResult{
		Outcome: entity.OutcomeUpdated,
		Product: sampleProduct(),
	}}
	srv := newTestServer(t, ing, 1, 2)

	auth := bearerToken(t, "42")
	body := `{"url":"https://shop.example.com/item/123"}`
	for i := 0; i < 2; i++ {
		resp := doRequest(t, srv, http.MethodPost, "/api/products", auth, body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	resp := doRequest(t, srv, http.MethodPost, "/api/products", auth, body)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
}

func TestHandleListHistory(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ing := &fakeIngestor{history: []entity.PriceHistoryRecord{
		{ID: 1, ProductID: 7, Price: decimal.RequireFromString("1299.00"), Currency: "USD", CheckedAt: base},
		{ID: 2, ProductID: 7, Price: decimal.RequireFromString("1199.00"), Currency: "USD", CheckedAt: base.Add(time.Hour)},
	}}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodGet, "/api/products/7/history", bearerToken(t, "42"), "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ing.lastProduct != 7 {
		t.Errorf("product id = %d, want 7", ing.lastProduct)
	}

	var body struct {
		ProductID int64 `json:"product_id"`
		History   []struct {
			Price string `json:"price"`
		} `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ProductID != 7 {
		t.Errorf("product_id = %d, want 7", body.ProductID)
	}
	if len(body.History) != 2 || body.History[0].Price != "1299.00" || body.History[1].Price != "1199.00" {
		t.Errorf("history = %+v", body.History)
	}
}

func TestHandleListHistory_Empty(t *testing.T) {
	ing := &fakeIngestor{history: []entity.PriceHistoryRecord{}}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodGet, "/api/products/7/history", bearerToken(t, "42"), "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		History []json.RawMessage `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.History == nil {
		t.Fatalf("history must be an empty array, not null")
	}
}

func TestHandleListHistory_NotFound(t *testing.T) {
	ing := &fakeIngestor{historyErr: repository.ErrProductNotFound}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodGet, "/api/products/999/history", bearerToken(t, "42"), "")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleListHistory_BadID(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodGet, "/api/products/abc/history", bearerToken(t, "42"), "")

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleDeleteProduct(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodDelete, "/api/products/7", bearerToken(t, "42"), "")

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if ing.lastOwnerID != 42 || ing.lastProduct != 7 {
		t.Errorf("delete called with owner=%d product=%d", ing.lastOwnerID, ing.lastProduct)
	}
}

func TestHandleDeleteProduct_NotFound(t *testing.T) {
	ing := &fakeIngestor{deleteErr: repository.ErrProductNotFound}
	srv := newTestServer(t, ing, 100, 100)

	resp := doRequest(t, srv, http.MethodDelete, "/api/products/999", bearerToken(t, "42"), "")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandleHealthCheck(t *testing.T) {
	srv := newTestServer(t, &fakeIngestor{}, 100, 100)

	resp := doRequest(t, srv, http.MethodGet, "/api/health", "", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}
