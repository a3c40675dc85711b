package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"haldoor-backend/internal/api"
	"haldoor-backend/internal/assets"
	"haldoor-backend/internal/auth"
	"haldoor-backend/internal/config"
	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

func main() {
	cfg := config.MustLoad()

	logger, err := zap.NewProduction()
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	// Initialize database
	log.Infow("initializing database", "path", cfg.DB.Path)
	if err := database.Open(database.Config{Path: cfg.DB.Path}); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	// Create default admin user if no users exist
	if err := createDefaultAdminIfNeeded(cfg, log); err != nil {
		log.Warnw("failed to create default admin", "error", err)
	}

	// Initialize asset storage
	assetMgr, err := assets.NewManager(cfg.Assets.Dir, log)
	if err != nil {
		log.Fatalw("failed to initialize asset storage", "error", err)
	}

	// Initialize auth service
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(tokens, cfg.Auth.BcryptCost)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// API routes
	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, authSvc, assetMgr)

	// Uploaded images are served without authentication
	e.Static("/uploads", assetMgr.Dir())

	log.Infow("starting haldoor backend", "port", cfg.HTTPServer.Port)
	e.Logger.Fatal(e.Start(":" + cfg.HTTPServer.Port))
}

// createDefaultAdminIfNeeded creates a bootstrap admin account if the user
// table is empty
func createDefaultAdminIfNeeded(cfg *config.Config, log *zap.SugaredLogger) error {
	userRepo := database.NewUserRepo()

	count, err := userRepo.Count()
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Users already exist
	}

	log.Warnw("creating default admin user - change this password",
		"email", cfg.Admin.Email)

	passwordHash, err := auth.HashPassword(cfg.Admin.Password, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         cfg.Admin.Name,
		Email:        cfg.Admin.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	return userRepo.Create(admin)
}
