package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/isell/backend/internal/application/catalog"
	"github.com/isell/backend/internal/interfaces/http/middleware"
)

// TariffHandler exposes tariff listing plus the admin-only import and risk
// matrix sync operations backed by the external catalog document.
type TariffHandler struct {
	BaseHandler
	tariffs *catalogapp.TariffService
	sync    *catalogapp.RiskSyncService
}

// NewTariffHandler creates a new TariffHandler
func NewTariffHandler(tariffs *catalogapp.TariffService, sync *catalogapp.RiskSyncService) *TariffHandler {
	return &TariffHandler{tariffs: tariffs, sync: sync}
}

// RegisterRoutes registers tariff and catalog sync routes on the API group
func (h *TariffHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tariffs := rg.Group("/tariffs")
	{
		tariffs.GET("", h.List)
		tariffs.POST("/import", middleware.RequireAdmin(), h.Import)
	}
	rg.POST("/catalog/risk/sync", middleware.RequireAdmin(), h.SyncRiskMatrix)
}

// List returns the active tariffs, optionally filtered by name.
func (h *TariffHandler) List(c *gin.Context) {
	tariffs, err := h.tariffs.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tariffs)
}

// Import pulls tariffs from the external document and upserts them locally.
func (h *TariffHandler) Import(c *gin.Context) {
	result, err := h.tariffs.Import(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SyncRiskMatrix mirrors the external risk matrix into local rows.
func (h *TariffHandler) SyncRiskMatrix(c *gin.Context) {
	result, err := h.sync.Sync(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
