package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/ctxkeys"
)

const (
	msgServerError  = "Lỗi server"
	msgInvalidJSON  = "Dữ liệu gửi lên không hợp lệ"
	msgBodyTooLarge = "Dữ liệu gửi lên quá lớn"
)

var (
	exposeErrors atomic.Bool
	maxBodyBytes atomic.Int64
)

func init() {
	maxBodyBytes.Store(10 << 20)
}

// Configure sets the JSON body limit and whether error responses carry the
// underlying cause in "message". Detail is meant for development only.
func Configure(maxJSONBody int64, exposeDetail bool) {
	if maxJSONBody > 0 {
		maxBodyBytes.Store(maxJSONBody)
	}
	exposeErrors.Store(exposeDetail)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

// writeError maps err to its status. Client errors carry their own message;
// storage and unexpected failures are logged and rendered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()

	resp := errorResponse{Error: msgServerError}
	var ae *apperr.Error
	if errors.As(err, &ae) && status < http.StatusInternalServerError {
		resp.Error = ae.Message
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"kind", kind.String(),
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", ctxkeys.IdentityID(r.Context()),
		)
		if exposeErrors.Load() {
			resp.Message = err.Error()
		}
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a size-limited JSON body into dst. Unknown fields are
// ignored. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes.Load())

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Validation(msgBodyTooLarge)
	}

	slog.Debug("invalid json body", "error", err, "path", r.URL.Path)
	return apperr.Validation(msgInvalidJSON)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
