package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RequestLogger is a middleware to log HTTP requests and record them in
// metrics. A nil metrics only logs.
func RequestLogger(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			took := time.Since(start)
			if metrics != nil {
				route := routeOf(r.URL.Path)
				metrics.Requests.WithLabelValues(route, strconv.Itoa(ww.statusCode)).Inc()
				metrics.RequestDuration.WithLabelValues(route).Observe(took.Seconds())
			}

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.statusCode).
				Str("ip", r.RemoteAddr).
				Dur("duration", took).
				Msg("Request processed")
		})
	}
}

// routeOf folds request paths into a bounded set of metric labels.
func routeOf(path string) string {
	switch {
	case path == "/api/maps", path == "/metrics", path == "/healthz":
		return path
	case strings.HasPrefix(path, "/maps/"):
		return "/maps/"
	default:
		return "other"
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing to the underlying response writer.
func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
