package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/templui/blogapi/internal/app"
	"github.com/templui/blogapi/internal/config"
)

const testSecret = "test-secret-for-integration-tests"

type testServer struct {
	t       *testing.T
	app     *app.App
	handler http.Handler
}

// newTestServer builds the full application on a temporary SQLite file and
// upload directory.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		AppName:          "Blog",
		AppEnv:           "test",
		AppURL:           "http://localhost:5173",
		Port:             "0",
		DBDriver:         "sqlite",
		DBConnection:     filepath.Join(dir, "blog.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		DBMaxOpenConns:   4,
		DBAcquireTimeout: 5 * time.Second,
		JWTSecret:        testSecret,
		JWTExpiry:        7 * 24 * time.Hour,
		BcryptCost:       4,
		CORSOrigins:      []string{"http://localhost:5173"},
		MaxJSONBodySize:  1 << 20,
		EmailFrom:        "noreply@example.com",
		StorageDriver:    "local",
		UploadDir:        filepath.Join(dir, "uploads"),
	}

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &testServer{t: t, app: a, handler: SetupRoutes(a)}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type upload struct {
	name    string
	content []byte
}

func (s *testServer) upload(path, field, token string, files ...upload) *httptest.ResponseRecorder {
	s.t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.name)
		require.NoError(s.t, err)
		_, err = part.Write(f.content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// register creates a user and returns its token and id.
func (s *testServer) register(name, email, password string) (string, string) {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(s.t, rec, &resp)
	return resp.Token, resp.User.ID
}

func (s *testServer) createBlog(token string, body map[string]any) string {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/blogs", token, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Blog struct {
			ID string `json:"id"`
		} `json:"blog"`
	}
	decode(s.t, rec, &resp)
	return resp.Blog.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}
