package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Ping is a simple health-check endpoint used by load balancers and
// uptime monitors to verify that the service is running. It returns a
// plain text "pong" with an HTTP 200 status code.
func Ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}
