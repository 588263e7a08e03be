package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arkana/auth-service/internal/metrics"
	"github.com/arkana/auth-service/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type passwordResetReq struct {
	Email string `json:"email"`
}
type passwordResetConfirmReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// tokenResp mirrors the legacy token payload, expires_in in seconds.
type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func newTokenResp(pair service.TokenPair) tokenResp {
	return tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	}
}

// Register: create an unverified user and schedule the verification email.
// Duplicate email is disclosed here; the reset flow below is the one that
// must stay silent about account existence.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/full_name required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if len(req.FullName) < 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name must be at least 2 characters"})
	}

	id, err := h.Svc.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			metrics.Observe("register", "duplicate_email")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		metrics.Observe("register", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "registration failed"})
	}

	metrics.Observe("register", "ok")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully. Please check your email to verify your account.",
		"user_id": id,
	})
}

// Login: verify credentials and return a token pair. Unknown email and wrong
// password produce byte-identical responses.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	pair, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			metrics.Observe("login", "invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
		case errors.Is(err, service.ErrAccountDisabled):
			metrics.Observe("login", "account_disabled")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account is disabled"})
		}
		metrics.Observe("login", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "login failed"})
	}

	metrics.Observe("login", "ok")
	return c.JSON(http.StatusOK, newTokenResp(pair))
}

// Refresh: exchange a refresh token for a new access token. The refresh
// token is echoed back unchanged (no rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	pair, err := h.Svc.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			metrics.Observe("refresh", "invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		case errors.Is(err, service.ErrTokenRevoked):
			metrics.Observe("refresh", "revoked")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token revoked or expired"})
		}
		metrics.Observe("refresh", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "refresh failed"})
	}

	metrics.Observe("refresh", "ok")
	return c.JSON(http.StatusOK, newTokenResp(pair))
}

// VerifyEmail: consume a verification token. The token rides in the query
// string because it arrives as a link click from the email.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	err := h.Svc.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActionTokenInvalid):
			metrics.Observe("verify_email", "invalid_token")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired verification token"})
		case errors.Is(err, service.ErrUserNotFound):
			metrics.Observe("verify_email", "user_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		metrics.Observe("verify_email", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification failed"})
	}

	metrics.Observe("verify_email", "ok")
	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully"})
}

// RequestPasswordReset: always answers with the same message, whether or not
// the email exists. Anything else would let callers enumerate accounts.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	if err := h.Svc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		metrics.Observe("password_reset", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "password reset failed"})
	}

	metrics.Observe("password_reset", "ok")
	return c.JSON(http.StatusOK, echo.Map{"message": "If the email exists, a password reset link has been sent"})
}

// ConfirmPasswordReset: consume a reset token and set the new password.
// A successful reset logs every session of the subject out.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Token) == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/new_password required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	err := h.Svc.ConfirmPasswordReset(c.Request().Context(), strings.TrimSpace(req.Token), req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActionTokenInvalid):
			metrics.Observe("password_reset_confirm", "invalid_token")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset token"})
		case errors.Is(err, service.ErrUserNotFound):
			metrics.Observe("password_reset_confirm", "user_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		metrics.Observe("password_reset_confirm", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "password reset failed"})
	}

	metrics.Observe("password_reset_confirm", "ok")
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
}

// Logout: delete the stored refresh token for the given subject. The email
// arrives unauthenticated, mirroring the legacy endpoint.
func (h *AuthHandler) Logout(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	if err := h.Svc.Logout(c.Request().Context(), email); err != nil {
		metrics.Observe("logout", "error")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "logout failed"})
	}

	metrics.Observe("logout", "ok")
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}
