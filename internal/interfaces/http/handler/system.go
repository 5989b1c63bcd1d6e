package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/isell/backend/internal/interfaces/http/dto"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness and dependency health.
type HealthHandler struct {
	BaseHandler
	db        *gorm.DB
	redis     *redis.Client
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. Either dependency may be nil,
// in which case it is reported as skipped.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers the health route on the API group
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components"`
}

// Health pings the database and redis and reports per-component status.
// It answers 200 while the service itself is up, 503 when a dependency is
// unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	components := map[string]string{}
	healthy := true

	if h.db != nil {
		components["database"] = "up"
		if sqlDB, err := h.db.DB(); err != nil {
			components["database"] = "down"
			healthy = false
		} else if err := sqlDB.PingContext(ctx); err != nil {
			components["database"] = "down"
			healthy = false
		}
	} else {
		components["database"] = "skipped"
	}

	if h.redis != nil {
		components["redis"] = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		}
	} else {
		components["redis"] = "skipped"
	}

	response := HealthResponse{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: components,
	}
	if !healthy {
		response.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(response))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
