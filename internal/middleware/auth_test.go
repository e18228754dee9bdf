package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/blogapi/internal/ctxkeys"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/service"
)

type fakeAuthenticator struct {
	identities map[string]*model.Identity
	errs       map[string]error
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	if identity, ok := f.identities[token]; ok {
		return identity, nil
	}
	return nil, service.ErrTokenMalformed
}

func newFakeAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{
		identities: map[string]*model.Identity{
			"alice": {ID: "u1", Name: "Alice", Email: "alice@x.com", Role: model.RoleUser},
			"root":  {ID: "u2", Name: "Root", Email: "root@x.com", Role: model.RoleAdmin},
		},
		errs: map[string]error{
			"expired":  service.ErrTokenExpired,
			"forged":   service.ErrTokenInvalidSignature,
			"inactive": service.ErrUserInactive,
			"db-down":  fmt.Errorf("failed to load user: %w", errors.New("connection refused")),
		},
	}
}

// whoami echoes the identity id from the context.
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(ctxkeys.IdentityID(r.Context())))
})

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(newFakeAuthenticator())(whoami)

	tests := []struct {
		name          string
		authorization string
		status        int
		message       string
	}{
		{"no header", "", http.StatusUnauthorized, "Access token is required"},
		{"wrong scheme", "Basic alice", http.StatusUnauthorized, "Access token is required"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Access token is required"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "Token expired"},
		{"bad signature", "Bearer forged", http.StatusUnauthorized, "Invalid token"},
		{"garbage", "Bearer garbage", http.StatusUnauthorized, "Invalid token"},
		{"inactive user", "Bearer inactive", http.StatusUnauthorized, "Invalid token - user not found"},
		{"store failure", "Bearer db-down", http.StatusInternalServerError, "Authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.authorization)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}

	t.Run("valid", func(t *testing.T) {
		rec := serve(h, "Bearer alice")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", rec.Body.String())
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		rec := serve(h, "bearer alice")
		assert.Equal(t, "u1", rec.Body.String())
	})
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(newFakeAuthenticator())(whoami)

	assert.Equal(t, "", serve(h, "").Body.String())
	assert.Equal(t, "", serve(h, "Bearer expired").Body.String())
	assert.Equal(t, "u1", serve(h, "Bearer alice").Body.String())
}

func TestRequireAdmin(t *testing.T) {
	h := Chain(whoami, RequireAuth(newFakeAuthenticator()), RequireAdmin)

	rec := serve(h, "Bearer alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, "Bearer root")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u2", rec.Body.String())
}

func TestRequestLoggingSeesUser(t *testing.T) {
	var meta *ctxkeys.RequestMeta
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta = ctxkeys.Meta(r.Context())
	})
	h := Chain(capture, RequestLogging, RequireAuth(newFakeAuthenticator()))

	rec := serve(h, "Bearer alice")
	require.NotNil(t, meta)
	assert.Equal(t, "u1", meta.UserID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Lỗi server", errorBody(t, rec))
}
