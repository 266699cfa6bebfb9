package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	h "github.com/JCHEPO/kiu/internal/delivery/http/helpers"
	"github.com/JCHEPO/kiu/internal/monitoring"
)

// RateLimit returns a handler that allows at most maxRequests per client IP
// per window, counted in redis with INCR+EXPIRE. When redis is unavailable
// the limiter fails open: dropping requests over a counter outage would be
// worse than briefly not limiting.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration, logger *slog.Logger, next http.Handler) http.Handler {
	if rdb == nil || maxRequests <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		key := fmt.Sprintf("ratelimit:%s", ip)

		ctx := r.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}
		if count > int64(maxRequests) {
			monitoring.RecordRateLimited(r.URL.Path)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
