package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/pricetracker-service/internal/delivery/http/handler"
	"github.com/user/pricetracker-service/internal/delivery/http/middleware"
	"github.com/user/pricetracker-service/pkg/metrics"
	"github.com/user/pricetracker-service/pkg/ratelimit"
)

func New(h *handler.Handler, m *metrics.Metrics, limiter *ratelimit.Limiter, jwtSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))
		// Only ingestion is throttled: it is the one path that calls the
		// metered extraction service.
		r.With(middleware.RateLimit(limiter, logger)).Post("/", h.HandleAddProduct)
		r.Get("/{id}/history", h.HandleListHistory)
		r.Delete("/{id}", h.HandleDeleteProduct)
	})

	return r
}
