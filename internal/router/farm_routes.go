package router

import (
	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/handler"
	"github.com/agrigestion/farm-api/internal/middleware"
	"github.com/agrigestion/farm-api/internal/repository"
)

// RegisterFarm mounts the ownership-scoped CRUD surface under /v1.  Every
// route requires a valid access token; both exploitants and admins pass the
// role gate, and per-resource ownership is enforced in the repositories.
func RegisterFarm(e *echo.Echo, f *handler.FarmHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(repository.RoleExploitant, repository.RoleAdmin))

	// Profile
	g.GET("/users/me", u.Me)
	g.PUT("/users/me", u.UpdateMe)

	// Exploitations
	g.POST("/exploitations", f.CreateExploitation)
	g.GET("/exploitations", f.ListExploitations)
	g.GET("/exploitations/:id", f.GetExploitation)
	g.PUT("/exploitations/:id", f.UpdateExploitation)
	g.DELETE("/exploitations/:id", f.DeleteExploitation)

	// Parcelles
	g.POST("/parcelles", f.CreateParcelle)
	g.GET("/parcelles", f.ListParcelles)
	g.GET("/parcelles/:id", f.GetParcelle)
	g.PUT("/parcelles/:id", f.UpdateParcelle)
	g.DELETE("/parcelles/:id", f.DeleteParcelle)

	// Cultures.  PUT doubles as the admin validation endpoint: an admin may
	// target any culture and set is_validated.
	g.POST("/cultures", f.CreateCulture)
	g.GET("/cultures", f.ListCultures)
	g.GET("/cultures/:id", f.GetCulture)
	g.PUT("/cultures/:id", f.UpdateCulture)
	g.DELETE("/cultures/:id", f.DeleteCulture)

	// Charges
	g.POST("/charges", f.CreateCharge)
	g.GET("/charges", f.ListCharges)
	g.GET("/charges/:id", f.GetCharge)
	g.PUT("/charges/:id", f.UpdateCharge)
	g.DELETE("/charges/:id", f.DeleteCharge)

	// Recoltes
	g.POST("/recoltes", f.CreateRecolte)
	g.GET("/recoltes", f.ListRecoltes)
	g.GET("/recoltes/:id", f.GetRecolte)
	g.PUT("/recoltes/:id", f.UpdateRecolte)
	g.DELETE("/recoltes/:id", f.DeleteRecolte)
}
