package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"haldoor-backend/internal/auth"
	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

var authService *auth.Service

// InitAuthHandlers wires the auth service (call after the database is ready)
func InitAuthHandlers(svc *auth.Service) {
	authService = svc
}

// registerHandler handles POST /api/user/register
func registerHandler(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "name, email and password are required",
		})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "password must be at least 6 characters",
		})
	}

	user, err := authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrUserAlreadyExists) {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "email already registered",
			})
		}
		c.Logger().Error("register error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "registration failed",
		})
	}

	return c.JSON(http.StatusCreated, user)
}

// loginHandler handles POST /api/user/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}

	resp, err := authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid email or password",
			})
		}
		c.Logger().Error("login error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  resp.User,
		"token": resp.Token,
	})
}

// getCurrentUser handles GET /api/user/me
func getCurrentUser(c echo.Context) error {
	user, err := userRepo.GetByID(auth.CallerID(c))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "account no longer exists",
			})
		}
		c.Logger().Error("get current user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load user",
		})
	}

	return c.JSON(http.StatusOK, user)
}
