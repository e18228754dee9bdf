package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"message":   "Blog API Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TestDB pings the database.
func (h *HealthHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.db.PingContext(ctx)
	if err != nil {
		slog.Error("database ping failed", "error", err)
		body := map[string]string{
			"status":  "error",
			"message": "Database connection failed",
		}
		if exposeErrors.Load() {
			body["error"] = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Database connection successful",
	})
}

// NotFound answers unknown /api routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Route not found"})
}
