package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/blogapi/internal/config"
	"github.com/templui/blogapi/internal/db"
	"github.com/templui/blogapi/internal/markdown"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/service"
	"github.com/templui/blogapi/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	LocalStorage    *storage.LocalStorage // nil unless STORAGE_DRIVER=local
	AuthService     *service.AuthService
	UserService     *service.UserService
	EmailService    *service.EmailService
	UploadService   *service.UploadService
	BlogService     *service.BlogService
	CommentService  *service.CommentService
	CategoryService *service.CategoryService
	CleanupService  *service.CleanupService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection, db.Options{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database, cfg.DBAcquireTimeout)
	blogRepository := repository.NewBlogRepository(database, cfg.DBAcquireTimeout)
	likeRepository := repository.NewLikeRepository(database, cfg.DBAcquireTimeout)
	commentRepository := repository.NewCommentRepository(database, cfg.DBAcquireTimeout)
	categoryRepository := repository.NewCategoryRepository(database, cfg.DBAcquireTimeout)

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	localStorage, _ := fileStorage.(*storage.LocalStorage)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	passwordHasher := service.NewPasswordHasher(cfg.BcryptCost)
	uploadService := service.NewUploadService(fileStorage, blogRepository)

	authService := service.NewAuthService(userRepository, tokenService, passwordHasher, emailService)
	userService := service.NewUserService(userRepository, blogRepository, passwordHasher, uploadService, emailService)
	blogService := service.NewBlogService(blogRepository, likeRepository, categoryRepository, markdown.NewParser())
	commentService := service.NewCommentService(commentRepository, blogService)
	categoryService := service.NewCategoryService(categoryRepository)
	cleanupService := service.NewCleanupService(fileStorage, blogRepository)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         fileStorage,
		LocalStorage:    localStorage,
		AuthService:     authService,
		UserService:     userService,
		EmailService:    emailService,
		UploadService:   uploadService,
		BlogService:     blogService,
		CommentService:  commentService,
		CategoryService: categoryService,
		CleanupService:  cleanupService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
