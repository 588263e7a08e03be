package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports per-store connectivity so operators can tell a
// degraded instance (one store down) from a dead one.
type HealthHandler struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

// Health checks both backing stores with short timeouts. Overall status is
// "healthy" only when every store answers; otherwise "degraded". The HTTP
// status stays 200 either way so load balancers treat degraded instances as
// reachable.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	mysqlStatus := "healthy"
	if h.DB == nil {
		mysqlStatus = "unhealthy"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := h.DB.PingContext(pingCtx); err != nil {
			mysqlStatus = "unhealthy"
		}
		cancel()
	}

	redisStatus := "healthy"
	if h.RDB == nil {
		redisStatus = "unhealthy"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := h.RDB.Ping(pingCtx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
		cancel()
	}

	overall := "healthy"
	if mysqlStatus != "healthy" || redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": overall,
		"services": echo.Map{
			"mysql": mysqlStatus,
			"redis": redisStatus,
		},
	})
}
