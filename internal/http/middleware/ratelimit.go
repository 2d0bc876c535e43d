package middlewarex

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"tvcatalog/internal/ratelimit"

	"github.com/rs/zerolog/log"
)

// LoginRateLimit limits attempts per client address. Limiter failures let the
// request through.
func LoginRateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			ok, retry, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("client", key).Msg("login limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				log.Info().Str("client", key).Msg("too many login attempts")
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "too many login attempts")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port of RemoteAddr, which chi's RealIP has already
// rewritten from forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
