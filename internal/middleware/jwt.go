package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/arkana/auth-service/internal/utils" // token codec for access token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject (email) and user id into the request context.
// The provided secret must match the one used when issuing tokens.  Only
// tokens typed "access" pass: a refresh token presented here is rejected even
// though its signature and expiry would verify.  Handlers read the
// authenticated identity via `c.Get("email")` and `c.Get("user_id")`.
// Expired and forged tokens share one response.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the JWT.  Anything
			// else means the request is unauthenticated.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyToken(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
			}

			// Store the identity claims in the context for handlers and
			// downstream middleware (the rate limiter keys on email).
			c.Set("email", claims.Subject)
			c.Set("user_id", claims.UserID)
			return next(c)
		}
	}
}
