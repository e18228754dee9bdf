package handler

import (
	"net/http"

	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/ctxkeys"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/service"
)

// AccountHandler serves the authenticated /api/auth/* routes.
type AccountHandler struct {
	userService *service.UserService
}

func NewAccountHandler(userService *service.UserService) *AccountHandler {
	return &AccountHandler{
		userService: userService,
	}
}

type userResponse struct {
	Message string `json:"message,omitempty"`
	User    any    `json:"user"`
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.Me(r.Context(), ctxkeys.IdentityID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: profile})
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.userService.ChangePassword(r.Context(), ctxkeys.IdentityID(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Đổi mật khẩu thành công"})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Bio      string `json:"bio"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
		Website  string `json:"website"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), ctxkeys.IdentityID(r.Context()), service.ProfileInput{
		Name:     req.Name,
		Bio:      req.Bio,
		Phone:    req.Phone,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "Cập nhật profile thành công", User: user})
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	headers, err := parseFiles(w, r, model.PurposeAvatars, "avatar")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if len(headers) == 0 {
		writeError(w, r, apperr.Validation("Không có file được upload"))
		return
	}

	user, err := h.userService.UploadAvatar(r.Context(), ctxkeys.IdentityID(r.Context()), headers[0])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message   string      `json:"message"`
		AvatarURL *string     `json:"avatarUrl"`
		User      *model.User `json:"user"`
	}{
		Message:   "Upload avatar thành công",
		AvatarURL: user.Avatar,
		User:      user,
	})
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.userService.DeleteAccount(r.Context(), ctxkeys.IdentityID(r.Context()), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Tài khoản đã được xóa thành công"})
}
