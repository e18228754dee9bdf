package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/blogapi/internal/ctxkeys"
)

const requestIDHeader = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Static files are not logged
var skipLoggingPaths = []string{
	"/uploads/",
	"/favicon.ico",
}

// RequestLogging assigns a request id and logs method, path, status,
// duration and the authenticated user once the response is written.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range skipLoggingPaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)

		meta := &ctxkeys.RequestMeta{RequestID: requestID}
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r.WithContext(ctxkeys.WithMeta(r.Context(), meta)))

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"request_id", requestID,
		}
		if meta.UserID != "" {
			attrs = append(attrs, "user_id", meta.UserID)
		}

		if rw.statusCode >= http.StatusInternalServerError {
			slog.Warn("http request", attrs...)
			return
		}
		slog.Info("http request", attrs...)
	})
}
