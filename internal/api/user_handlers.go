package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"haldoor-backend/internal/auth"
	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

var userRepo *database.UserRepo

// InitUserHandlers initializes the user repository
func InitUserHandlers() {
	userRepo = database.NewUserRepo()
}

// listUsersHandler handles GET /api/user/all
func listUsersHandler(c echo.Context) error {
	users, err := userRepo.List()
	if err != nil {
		c.Logger().Error("list users error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list users",
		})
	}

	return c.JSON(http.StatusOK, users)
}

// updateUserHandler handles PATCH /api/user/:id
func updateUserHandler(c echo.Context) error {
	id := c.Param("id")

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	user, err := userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("get user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load user",
		})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if user.Name == "" || user.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "name and email must not be empty",
		})
	}

	if err := userRepo.Update(user); err != nil {
		c.Logger().Error("update user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update user",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// changePasswordHandler handles PATCH /api/user/:id/password
// Allowed for the account owner, or for an admin (live role re-check)
func changePasswordHandler(c echo.Context) error {
	id := c.Param("id")
	callerID := auth.CallerID(c)

	if callerID != id {
		role, err := userRepo.GetRole(callerID)
		if err != nil || role != models.RoleAdmin {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "cannot change another user's password",
			})
		}
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "password must be at least 6 characters",
		})
	}

	passwordHash, err := authService.HashPassword(req.NewPassword)
	if err != nil {
		c.Logger().Error("hash password error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update password",
		})
	}

	if err := userRepo.UpdatePassword(id, passwordHash); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("update password error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update password",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "password updated successfully",
	})
}

// changeRoleHandler handles PATCH /api/user/role/:id
func changeRoleHandler(c echo.Context) error {
	id := c.Param("id")

	var req models.ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if !req.Role.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid role specified",
		})
	}

	if err := userRepo.UpdateRole(id, req.Role); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("change role error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update role",
		})
	}

	user, err := userRepo.GetByID(id)
	if err != nil {
		c.Logger().Error("get user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load user",
		})
	}

	return c.JSON(http.StatusOK, user)
}

// deleteUserHandler handles DELETE /api/user/:id
func deleteUserHandler(c echo.Context) error {
	id := c.Param("id")

	if id == auth.CallerID(c) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "cannot delete your own account",
		})
	}

	if err := userRepo.Delete(id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("delete user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete user",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}
