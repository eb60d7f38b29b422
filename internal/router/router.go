package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/agrigestion/farm-api/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations (register, login, refresh, logout) live under /v1/auth; the
// profile endpoints are registered by RegisterFarm because they sit behind
// the same JWT gate as the rest of /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and re-reads the user's role from the
	// store, so a role change becomes effective at the next refresh.
	g.POST("/refresh", a.Refresh)
	// Logout revokes the presented refresh token, or every token for the
	// caller when a valid access token accompanies the request.
	g.POST("/logout", a.Logout)
}
