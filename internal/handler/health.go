package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint used by load balancers and monitoring
// systems.  It always answers a plain text "Hello World" with 200 and does
// not touch the task store.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "Hello World")
}
