package router

import (
	"net/http"
	"time"

	"github.com/mattiaburati/georouting/metrics"
	"github.com/rs/zerolog"
)

// Timing emits one performance record per request with the elapsed handling
// time in milliseconds, and feeds the request duration histogram.
func Timing(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)

		metrics.Duration.Observe(elapsed.Seconds())

		log.Info().
			Str("url", r.URL.String()).
			Float64("elapsed_ms", float64(elapsed)/float64(time.Millisecond)).
			Msg("timing")
	})
}
