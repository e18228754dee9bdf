package handler

import (
	"net/http"

	"github.com/templui/blogapi/internal/service"
)

type AdminHandler struct {
	cleanupService *service.CleanupService
}

func NewAdminHandler(cleanupService *service.CleanupService) *AdminHandler {
	return &AdminHandler{cleanupService: cleanupService}
}

func (h *AdminHandler) CleanupImages(w http.ResponseWriter, r *http.Request) {
	report, err := h.cleanupService.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string                `json:"message"`
		Report  service.CleanupReport `json:"report"`
	}{
		Message: "Dọn dẹp hình ảnh hoàn tất",
		Report:  report,
	})
}
