package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests. Occurrences of secret in the path are masked.
func Logging(next http.Handler, logger *logrus.Logger, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if secret != "" {
			path = strings.ReplaceAll(path, secret, "***")
		}

		entry := logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
		})

		// Probes and scrapes are noisy
		if path == "/" || path == "/health" || path == "/metrics" {
			entry.Debug("HTTP request")
			return
		}
		entry.Info("HTTP request")
	})
}
