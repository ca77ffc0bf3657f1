package inventory

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/middleware"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/service/inventory"
)

type Handler struct {
	service *inventory.Service
	repo    repository.InventoryRepository
}

func NewHandler(service *inventory.Service, repo repository.InventoryRepository) *Handler {
	return &Handler{service: service, repo: repo}
}

// RegisterRoutes wires the ledger surface. Stock levels are written by
// warehouse staff only; everyone authenticated can read availability.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	items := rg.Group("/inventory")
	{
		items.GET("", h.ListInventory)
		items.GET("/:material", h.GetByMaterial)
		items.PUT("/:material", auth.RequireRole(model.RoleWarehouse, model.RoleAdmin), h.UpsertStock)
	}
}

func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": items})
}

func (h *Handler) GetByMaterial(c *gin.Context) {
	item, err := h.service.GetByMaterial(c.Request.Context(), c.Param("material"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": item})
}

type upsertStockURI struct {
	Material string `uri:"material" binding:"required,material"`
}

type upsertStockRequest struct {
	AvailableQuantity float64 `json:"available_quantity" binding:"min=0"`
	MinThreshold      float64 `json:"min_threshold" binding:"min=0"`
	MaxCapacity       float64 `json:"max_capacity" binding:"min=0"`
}

func (h *Handler) UpsertStock(c *gin.Context) {
	var uri upsertStockURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "material type not accepted"})
		return
	}
	materialType := uri.Material

	var req upsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	now := time.Now()
	item := &model.InventoryItem{
		Base:              model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		MaterialType:      materialType,
		AvailableQuantity: req.AvailableQuantity,
		MinThreshold:      req.MinThreshold,
		MaxCapacity:       req.MaxCapacity,
		LastUpdated:       now,
	}

	// Preserve the live reservation level on an existing item.
	if existing, err := h.service.GetByMaterial(c.Request.Context(), materialType); err == nil {
		item.Base = existing.Base
		item.UpdatedAt = now
		item.ReservedQuantity = existing.ReservedQuantity
	}

	if err := h.repo.Upsert(c.Request.Context(), item); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": item})
}
