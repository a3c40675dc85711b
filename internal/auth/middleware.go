package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

// Context keys for storing the verified token claims
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// RoleReader is the store lookup RequireAdmin uses to read the current
// persisted role.
type RoleReader interface {
	GetRole(id string) (models.Role, error)
}

// RequireAuth middleware verifies the bearer token and stores its claims
// in the request context
func RequireAuth(tokens *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getTokenFromRequest(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired token",
				})
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyRole, claims.Role)

			return next(c)
		}
	}
}

// RequireAdmin middleware gates admin-only operations. It re-reads the
// current persisted role rather than trusting the token's role claim, so a
// role change takes effect on the very next request even with an old token.
// Must be used after RequireAuth. Costs one store read per call.
func RequireAdmin(users RoleReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := CallerID(c)
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			role, err := users.GetRole(userID)
			if err != nil {
				if err == database.ErrUserNotFound {
					// Valid token for a deleted account
					return c.JSON(http.StatusUnauthorized, map[string]string{
						"error": "account no longer exists",
					})
				}
				c.Logger().Error("role lookup error: ", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "authorization check failed",
				})
			}

			if role != models.RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "requires administrator privileges",
				})
			}

			return next(c)
		}
	}
}

// getTokenFromRequest extracts the session token from the request
func getTokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// CallerID retrieves the authenticated user id from the context
func CallerID(c echo.Context) string {
	id, ok := c.Get(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// CallerRole retrieves the token's role claim from the context. This is a
// snapshot from issue time; admin gates use RequireAdmin instead.
func CallerRole(c echo.Context) models.Role {
	role, ok := c.Get(ContextKeyRole).(models.Role)
	if !ok {
		return ""
	}
	return role
}
