package routes

import (
	"net/http"
	"os"
	"strings"

	"github.com/templui/blogapi/internal/app"
	"github.com/templui/blogapi/internal/handler"
	"github.com/templui/blogapi/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	handler.Configure(app.Cfg.MaxJSONBodySize, app.Cfg.IsDevelopment())

	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	account := handler.NewAccountHandler(app.UserService)
	blog := handler.NewBlogHandler(app.BlogService, app.CommentService)
	category := handler.NewCategoryHandler(app.CategoryService)
	upload := handler.NewUploadHandler(app.UploadService)
	admin := handler.NewAdminHandler(app.CleanupService)

	requireAuth := middleware.RequireAuth(app.AuthService)
	optionalAuth := middleware.OptionalAuth(app.AuthService)
	rateLimiter := middleware.RateLimit(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static uploads (local storage only)
	if app.LocalStorage != nil {
		files := http.FileServer(noListingFS{http.Dir(app.LocalStorage.Root())})
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads", files))
	}

	mux.HandleFunc("GET /api/health", health.Health)
	mux.HandleFunc("GET /api/test-db", health.TestDB)

	// Auth (rate limited)
	mux.Handle("POST /api/auth/register", middleware.Wrap(auth.Register, rateLimiter))
	mux.Handle("POST /api/auth/login", middleware.Wrap(auth.Login, rateLimiter))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// Blogs
	mux.HandleFunc("GET /api/blogs", blog.List)
	mux.Handle("GET /api/blogs/{id}", middleware.Wrap(blog.Get, optionalAuth))
	mux.Handle("GET /api/blogs/{id}/comments", middleware.Wrap(blog.ListComments, optionalAuth))
	mux.HandleFunc("GET /api/categories", category.List)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Account
	mux.Handle("GET /api/auth/me", middleware.Wrap(account.Me, requireAuth))
	mux.Handle("PUT /api/auth/change-password", middleware.Wrap(account.ChangePassword, requireAuth))
	mux.Handle("PUT /api/auth/profile", middleware.Wrap(account.UpdateProfile, requireAuth))
	mux.Handle("POST /api/auth/upload-avatar", middleware.Wrap(account.UploadAvatar, requireAuth))
	mux.Handle("DELETE /api/auth/delete-account", middleware.Wrap(account.DeleteAccount, requireAuth))

	// Blogs ("my-blogs" is a literal segment and wins over {id})
	mux.Handle("GET /api/blogs/my-blogs", middleware.Wrap(blog.MyBlogs, requireAuth))
	mux.Handle("POST /api/blogs", middleware.Wrap(blog.Create, requireAuth))
	mux.Handle("PUT /api/blogs/{id}", middleware.Wrap(blog.Update, requireAuth))
	mux.Handle("DELETE /api/blogs/{id}", middleware.Wrap(blog.Delete, requireAuth))
	mux.Handle("POST /api/blogs/{id}/toggle-like", middleware.Wrap(blog.ToggleLike, requireAuth))
	mux.Handle("POST /api/blogs/{id}/comments", middleware.Wrap(blog.CreateComment, requireAuth))

	// Uploads
	mux.Handle("POST /api/upload/images", middleware.Wrap(upload.UploadImages, requireAuth))
	mux.Handle("DELETE /api/upload/image/{filename}", middleware.Wrap(upload.DeleteImage, requireAuth))

	// Admin
	mux.Handle("POST /api/admin/cleanup-images", middleware.Wrap(admin.CleanupImages, requireAuth, middleware.RequireAdmin))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/api/", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSOrigins),
	)
}

// noListingFS serves files but answers directories with 404.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() || strings.HasPrefix(stat.Name(), ".") {
		_ = f.Close()
		return nil, os.ErrNotExist
	}

	return f, nil
}
