package router

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/mattiaburati/georouting/metrics"
	"github.com/rs/zerolog"
)

// Handler is an http.Handler variant that reports failures to its caller
// instead of writing them itself.
type Handler interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

// Boundary adapts a Handler into an http.Handler, converting any failure -
// returned or panicked - into a plain-text 500 response. It is the single
// error boundary for request handling; nothing below it shapes its own error
// responses.
func Boundary(log zerolog.Logger, next Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				err, ok := v.(error)
				if !ok {
					err = fmt.Errorf("%v", v)
				}
				fail(log, w, r, err, debug.Stack())
			}
		}()

		if err := next.Serve(w, r); err != nil {
			fail(log, w, r, err, nil)
		}
	})
}

func fail(log zerolog.Logger, w http.ResponseWriter, r *http.Request, err error, stack []byte) {
	metrics.Requests.WithLabelValues("error").Inc()

	ev := log.Error().
		Err(err).
		Str("method", r.Method).
		Str("url", r.URL.String())
	if stack != nil {
		ev = ev.Bytes("stack", stack)
	}
	ev.Msg("request failed")

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
