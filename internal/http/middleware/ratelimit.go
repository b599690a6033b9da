package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/harutok/counts-service/internal/ratelimit"
	"github.com/harutok/counts-service/internal/utils/response"
)

type RateLimitConfig struct {
	redisClient *redis.Client
	limiters    map[string]*ratelimit.TokenBucket
}

// NewRateLimitConfig configures per-user limits for the count-up endpoints.
// There is no authentication in this service, so the subject is the {userId}
// path segment the count is recorded against.
func NewRateLimitConfig(redisClient *redis.Client, countUpPerMinute int64) *RateLimitConfig {
	config := &RateLimitConfig{
		redisClient: redisClient,
		limiters:    make(map[string]*ratelimit.TokenBucket),
	}

	config.limiters["roly-poly"] = ratelimit.NewTokenBucket(redisClient, countUpPerMinute, countUpPerMinute)
	config.limiters["others"] = ratelimit.NewTokenBucket(redisClient, countUpPerMinute, countUpPerMinute)

	return config
}

func (rlc *RateLimitConfig) RateLimitMiddleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := r.PathValue("userId")
			if subject == "" {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
					errors.New("Invalid request")))
				return
			}

			limiter, exists := rlc.limiters[action]
			if !exists {
				// No rate limiter configured for this action, allow the request
				next.ServeHTTP(w, r)
				return
			}

			allowed, remaining, err := limiter.Allow(r.Context(), subject, action)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.Capacity(), 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", "60") // Reset in 60 seconds (1 minute window)

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action)(http.HandlerFunc(handler))
}
