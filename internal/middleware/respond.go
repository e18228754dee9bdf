package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeError renders the API error body {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]string{"error": msg})
	if err != nil {
		slog.Debug("failed to write error response", "error", err)
	}
}
