package middleware

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/staybook/booking-api/internal/pkg/logger"
	"github.com/staybook/booking-api/internal/pkg/response"
)

// NewRateLimitStore returns a Redis backed store shared across instances,
// or a process local memory store when client is nil.
func NewRateLimitStore(client *redis.Client, routeID string) (limiter.Store, error) {
	prefix := fmt.Sprintf("rate_limiter:%s", routeID)
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
	}
	return store, nil
}

// RateLimit limits requests per client IP. rate uses the "<limit>-<S|M|H|D>" format.
// The key is RemoteAddr; forwarding headers are only honoured through RealIP.
func RateLimit(store limiter.Store, rate string) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	mw := stdlib.NewMiddleware(
		limiter.New(store, parsed, limiter.WithTrustForwardHeader(false)),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Warn().
				Str("ip", getClientIP(r)).
				Str("path", r.URL.Path).
				Msg("rate limit reached")
			response.TooManyRequests(w)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.FromContext(r.Context()).Error().Err(err).Msg("rate limiter store error")
			response.InternalError(w)
		}),
	)

	return mw.Handler, nil
}
