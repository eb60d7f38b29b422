package router

import (
	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/handler"
	"github.com/agrigestion/farm-api/internal/middleware"
	"github.com/agrigestion/farm-api/internal/repository"
)

// RegisterAdmin mounts the user-management endpoints.  The whole group is
// gated on the admin role; exploitants receive 403 before any handler runs.
func RegisterAdmin(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(repository.RoleAdmin))

	g.GET("", u.List)
	g.POST("", u.Create)
	g.PUT("/:id", u.Update)
	// Role-only update kept as its own route so clients can grant or revoke
	// admin without resending the profile fields.
	g.PUT("/:id/role", u.UpdateRole)
	g.DELETE("/:id", u.Delete)
}
