package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint used by load balancers and monitoring to
// verify that the service is up.  It is deliberately dependency-free: it
// answers even when MySQL, Redis or the broker are down.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
