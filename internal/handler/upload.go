package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/ctxkeys"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/service"
)

// multipart parts above this size spill to temporary files
const multipartMemory = 8 << 20

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// parseFiles reads the multipart form and returns the files sent under
// field. The body is capped by the purpose's upload limit.
func parseFiles(w http.ResponseWriter, r *http.Request, purpose, field string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes(purpose))

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("File quá lớn")
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, apperr.Validation("Không có file được upload")
		}
		slog.Debug("invalid multipart body", "error", err)
		return nil, apperr.Validation("Dữ liệu upload không hợp lệ")
	}

	return r.MultipartForm.File[field], nil
}

func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	headers, err := parseFiles(w, r, model.PurposeBlogs, "images")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := h.uploadService.StoreImages(r.Context(), model.PurposeBlogs, headers)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string             `json:"message"`
		Files   []model.StoredFile `json:"files"`
	}{
		Message: "Upload thành công",
		Files:   files,
	})
}

func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	err := h.uploadService.DeleteImage(r.Context(), ctxkeys.IdentityID(r.Context()), r.PathValue("filename"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Xóa file thành công"})
}
