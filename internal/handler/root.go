package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Service identity reported by the root endpoint.
const (
	serviceName    = "Arkana Auth Service"
	serviceVersion = "1.0.0"
)

// Root is the service banner endpoint used by humans and smoke tests to
// verify that the service is reachable and to discover the metrics path.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"service": serviceName,
		"version": serviceVersion,
		"status":  "operational",
		"metrics": "/metrics",
	})
}
