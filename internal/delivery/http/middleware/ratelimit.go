package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/user/pricetracker-service/pkg/ratelimit"
)

// RateLimit throttles requests per owner before the pipeline reaches the
// metered extraction service. Runs after Auth so the owner id is available;
// unauthenticated requests share one bucket. When Redis is unreachable the
// middleware fails open: a lost throttle is cheaper than a dead API.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "anonymous"
			if ownerID, ok := OwnerFromContext(r.Context()); ok {
				key = strconv.FormatInt(ownerID, 10)
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests, slow down"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
