package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/pricetracker-service/internal/delivery/http/middleware"
	"github.com/user/pricetracker-service/internal/delivery/http/request"
	"github.com/user/pricetracker-service/internal/delivery/http/response"
	"github.com/user/pricetracker-service/internal/entity"
	"github.com/user/pricetracker-service/internal/repository"
	"github.com/user/pricetracker-service/internal/usecase"
)

type Handler struct {
	ingestor usecase.Ingestor
	logger   *zap.Logger
}

func NewHandler(ingestor usecase.Ingestor, logger *zap.Logger) *Handler {
	return &Handler{
		ingestor: ingestor,
		logger:   logger,
	}
}

// HandleAddProduct runs the ingestion pipeline for the submitted URL.
func (h *Handler) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeJSONError(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req request.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), ownerID, req.URL)
	if err != nil {
		h.writeIngestError(w, req.URL, err)
		return
	}

	status := http.StatusOK
	message := "Product updated with latest price!"
	if result.Outcome == entity.OutcomeCreated {
		status = http.StatusCreated
		message = "Product added successfully!"
	}

	h.writeJSON(w, status, response.AddProductResponse{
		Status:  string(result.Outcome),
		Message: message,
		Product: response.FromProduct(result.Product),
	})
}

// HandleListHistory returns a product's price timeline, oldest first.
func (h *Handler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeJSONError(w, "not signed in", http.StatusUnauthorized)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	records, err := h.ingestor.ListHistory(r.Context(), ownerID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.writeJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to list price history",
			zap.Int64("product_id", productID),
			zap.Error(err))
		h.writeJSONError(w, "could not load price history, please try again", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromHistory(productID, records))
}

// HandleDeleteProduct removes one of the owner's products.
func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		h.writeJSONError(w, "not signed in", http.StatusUnauthorized)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.ingestor.DeleteProduct(r.Context(), ownerID, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.writeJSONError(w, "product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete product",
			zap.Int64("product_id", productID),
			zap.Error(err))
		h.writeJSONError(w, "could not delete product, please try again", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeIngestError maps the pipeline's error taxonomy to responses that make
// the corrective action clear: fix the URL, sign in, or retry later.
func (h *Handler) writeIngestError(w http.ResponseWriter, rawURL string, err error) {
	switch {
	case errors.Is(err, usecase.ErrMissingURL):
		h.writeJSONError(w, "product URL is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrUnauthenticated):
		h.writeJSONError(w, "not signed in", http.StatusUnauthorized)
	case errors.Is(err, repository.ErrInvalidProductName),
		errors.Is(err, repository.ErrInvalidPrice),
		errors.Is(err, repository.ErrInvalidCurrency),
		errors.Is(err, repository.ErrExtractionFailed):
		h.writeJSONError(w, "could not read product data from this page: "+err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("failed to ingest product",
			zap.String("url", rawURL),
			zap.Error(err))
		h.writeJSONError(w, "could not save the product, please try again", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
