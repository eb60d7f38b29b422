package router

import (
	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/handler"
	"github.com/agrigestion/farm-api/internal/middleware"
	"github.com/agrigestion/farm-api/internal/repository"
)

// RegisterStats mounts the aggregation endpoints.  The extra middlewares
// argument lets main attach the Redis response cache to these read-heavy
// GETs without caching the rest of the API; it may be empty when Redis is
// not configured.
func RegisterStats(e *echo.Echo, s *handler.StatsHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1/stats")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(repository.RoleExploitant, repository.RoleAdmin))
	g.Use(extra...)

	g.GET("/cultures/:id", s.CultureStats)
	g.GET("/exploitations/:id", s.ExploitationStats)
	g.GET("/overview", s.Overview)

	// Platform-wide rollup is admin only.
	a := e.Group("/v1/admin/stats")
	a.Use(middleware.JWTAuth(jwtSecret))
	a.Use(middleware.RequireRole(repository.RoleAdmin))
	a.Use(extra...)

	a.GET("/platform", s.PlatformStats)
}
