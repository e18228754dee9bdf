package handler

import (
	"net/http"

	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type authResponse struct {
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      *model.User `json:"user"`
}

func newAuthResponse(msg string, result *service.AuthResult) authResponse {
	return authResponse{
		Message:   msg,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		User:      result.User,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAuthResponse("Đăng ký thành công", result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse("Đăng nhập thành công", result))
}

// Logout is a no-op: tokens are stateless and the client drops its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Đăng xuất thành công"})
}
