package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"haldoor-backend/internal/assets"
	"haldoor-backend/internal/auth"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, authSvc *auth.Service, assetMgr *assets.Manager) {
	// Initialize services
	InitAuthHandlers(authSvc)
	InitUserHandlers()
	InitPropertyHandlers(assetMgr)

	tokens := authSvc.Tokens()

	// Health check (public)
	api.GET("/health", healthCheck)

	// User routes
	users := api.Group("/user")
	users.POST("/register", registerHandler)
	users.POST("/login", loginHandler)
	users.GET("/me", getCurrentUser, auth.RequireAuth(tokens))
	// Password change is allowed for the account owner or an admin;
	// the handler enforces which
	users.PATCH("/:id/password", changePasswordHandler, auth.RequireAuth(tokens))

	// User management (admin only; role is re-read from the store)
	adminUsers := users.Group("", auth.RequireAuth(tokens), auth.RequireAdmin(userRepo))
	adminUsers.GET("/all", listUsersHandler)
	adminUsers.PATCH("/:id", updateUserHandler)
	adminUsers.PATCH("/role/:id", changeRoleHandler)
	adminUsers.DELETE("/:id", deleteUserHandler)

	// Property routes (listing reads are public)
	properties := api.Group("/enter")
	properties.GET("/all", listPropertiesHandler)
	properties.GET("/:id", getPropertyHandler)

	// Property mutations require authentication
	properties.POST("/add", addPropertyHandler, auth.RequireAuth(tokens))
	properties.PATCH("/update/:id", updatePropertyHandler, auth.RequireAuth(tokens))
	properties.DELETE("/:id", deletePropertyHandler, auth.RequireAuth(tokens))
	properties.POST("/purchase/:id", purchasePropertyHandler, auth.RequireAuth(tokens))
}

// Health check
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
