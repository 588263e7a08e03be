package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/arkana/auth-service/internal/handler"    // import the handlers that implement business logic
	"github.com/arkana/auth-service/internal/metrics"    // Prometheus scrape endpoint
	"github.com/arkana/auth-service/internal/middleware" // middleware for JWT authentication
)

// RegisterRoutes registers the routes that carry no authentication state:
// the service banner, the health check and the metrics scrape endpoint.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	e.GET("/", handler.Root)
	// Used by load balancers and monitoring systems; reports per-store
	// connectivity rather than a bare 200.
	e.GET("/health", health.Health)
	e.GET("/metrics", metrics.Handler())
}

// RegisterAuth registers the session lifecycle routes under /auth and the
// profile routes under /users.  The lifecycle endpoints themselves are
// unauthenticated (they are how a session comes to exist); the profile
// endpoints require a valid access token, enforced by the JWTAuth
// middleware with the provided secret.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	// Lifecycle operations live under /auth.  Register discloses duplicate
	// emails, password-reset does not disclose anything, and
	// logout accepts an unauthenticated email parameter for wire
	// compatibility with existing clients.
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/verify-email", a.VerifyEmail)
	g.POST("/password-reset", a.RequestPasswordReset)
	g.POST("/password-reset/confirm", a.ConfirmPasswordReset)
	g.POST("/logout", a.Logout)

	// Profile routes require a valid access token.  The middleware places
	// the subject email and user id into the request context.
	users := e.Group("/users")
	users.Use(middleware.JWTAuth(jwtSecret))
	users.GET("/me", u.Me)
	users.GET("/:id", u.GetByID)
}
