package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/pricetracker-service/internal/canonical"
	"github.com/user/pricetracker-service/internal/entity"
	"github.com/user/pricetracker-service/internal/repository"
	"github.com/user/pricetracker-service/pkg/metrics"
)

var (
	// ErrMissingURL is returned when the submitted URL is empty.
	ErrMissingURL = errors.New("product URL is required")
	// ErrUnauthenticated is returned when no owner identity accompanies the
	// call. The pipeline never creates or validates identities itself.
	ErrUnauthenticated = errors.New("no authenticated owner")
)

// Ingestor defines the pipeline entry points exposed to the delivery layer.
type Ingestor interface {
	// Ingest canonicalizes rawURL, extracts live product data, upserts the
	// product owned by ownerID and appends a price history record when the
	// price changed or the product is new.
	Ingest(ctx context.Context, ownerID int64, rawURL string) (*entity.IngestResult, error)
	// ListHistory returns the price timeline of one of ownerID's products,
	// ascending by checked_at.
	ListHistory(ctx context.Context, ownerID, productID int64) ([]entity.PriceHistoryRecord, error)
	// DeleteProduct removes one of ownerID's products. The ingestion pipeline
	// itself never deletes; this exists for the surrounding application.
	DeleteProduct(ctx context.Context, ownerID, productID int64) error
}

type ingestUseCase struct {
	products  repository.ProductRepository
	history   repository.PriceHistoryRepository
	extractor repository.Extractor
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewIngestor creates the ingestion use case. All collaborators are injected;
// the use case holds no global state.
func NewIngestor(
	products repository.ProductRepository,
	history repository.PriceHistoryRepository,
	extractor repository.Extractor,
	m *metrics.Metrics,
	logger *zap.Logger,
) Ingestor {
	return &ingestUseCase{
		products:  products,
		history:   history,
		extractor: extractor,
		metrics:   m,
		logger:    logger,
	}
}

func (uc *ingestUseCase) Ingest(ctx context.Context, ownerID int64, rawURL string) (*entity.IngestResult, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrMissingURL
	}
	if ownerID <= 0 {
		return nil, ErrUnauthenticated
	}

	canonicalURL := canonical.Canonicalize(rawURL)

	start := time.Now()
	payload, err := uc.extractor.Extract(ctx, canonicalURL)
	uc.metrics.ExtractionDuration.WithLabelValues(hostLabel(canonicalURL)).Observe(time.Since(start).Seconds())
	if err != nil {
		// No writes have happened yet; the failure surfaces as-is so the
		// caller can tell a bad page from a storage problem.
		uc.metrics.IngestsTotal.WithLabelValues("failed").Inc()
		uc.logger.Warn("extraction failed",
			zap.Int64("owner_id", ownerID),
			zap.String("url", canonicalURL),
			zap.Error(err))
		return nil, err
	}

	prior, err := uc.products.FindByOwnerAndURL(ctx, ownerID, canonicalURL)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		uc.metrics.IngestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("look up existing product: %w", err)
	}

	product, err := uc.products.Upsert(ctx, repository.ProductUpsert{
		OwnerID:  ownerID,
		URL:      canonicalURL,
		Name:     payload.ProductName,
		Price:    payload.CurrentPrice,
		Currency: payload.CurrencyCode,
		ImageURL: payload.ProductImageURL,
	})
	if err != nil {
		uc.metrics.IngestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("save product: %w", err)
	}

	// The history decision is computed from the read above, which is not
	// covered by the upsert's atomicity. Two concurrent first-time submissions
	// can both observe "no prior product" and record the observation twice;
	// the unique constraint on (owner_id, url) still collapses them into one
	// product row. Known relaxed guarantee.
	shouldRecord := prior == nil || !prior.CurrentPrice.Equal(payload.CurrentPrice)
	if shouldRecord {
		if err := uc.history.Insert(ctx, product.ID, payload.CurrentPrice, payload.CurrencyCode); err != nil {
			uc.metrics.IngestsTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("record price history: %w", err)
		}
	}

	outcome := entity.OutcomeUpdated
	if prior == nil {
		outcome = entity.OutcomeCreated
	}
	uc.metrics.IngestsTotal.WithLabelValues(string(outcome)).Inc()
	uc.logger.Info("product ingested",
		zap.Int64("owner_id", ownerID),
		zap.Int64("product_id", product.ID),
		zap.String("url", canonicalURL),
		zap.String("outcome", string(outcome)),
		zap.Bool("price_recorded", shouldRecord))

	return &entity.IngestResult{Outcome: outcome, Product: product}, nil
}

func (uc *ingestUseCase) ListHistory(ctx context.Context, ownerID, productID int64) ([]entity.PriceHistoryRecord, error) {
	if ownerID <= 0 {
		return nil, ErrUnauthenticated
	}

	product, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	// Products of other owners are indistinguishable from absent ones.
	if product.OwnerID != ownerID {
		return nil, repository.ErrProductNotFound
	}

	return uc.history.ListByProduct(ctx, productID)
}

func (uc *ingestUseCase) DeleteProduct(ctx context.Context, ownerID, productID int64) error {
	if ownerID <= 0 {
		return ErrUnauthenticated
	}

	if err := uc.products.Delete(ctx, ownerID, productID); err != nil {
		return err
	}

	uc.logger.Info("product deleted",
		zap.Int64("owner_id", ownerID),
		zap.Int64("product_id", productID))
	return nil
}

// hostLabel keeps the extraction duration metric's cardinality bounded to the
// page's hostname.
func hostLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
