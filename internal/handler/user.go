package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arkana/auth-service/internal/model"
	"github.com/arkana/auth-service/internal/service"
)

// UserHandler serves the profile endpoints behind the access token
// middleware.
type UserHandler struct {
	Svc *service.AuthService
}

func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{Svc: svc}
}

type userResp struct {
	ID         uint64    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserResp(u model.User) userResp {
	return userResp{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	email, _ := c.Get("email").(string)
	if email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}

	u, err := h.Svc.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}

// GetByID returns a user record by id. Authorization is self-only: callers
// may read their own record and nobody else's.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID format"})
	}

	callerID, _ := c.Get("user_id").(uint64)
	if callerID == 0 || callerID != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to access this user's information"})
	}

	u, err := h.Svc.GetUserByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "lookup failed"})
	}
	return c.JSON(http.StatusOK, newUserResp(u))
}
