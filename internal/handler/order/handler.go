package order

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/middleware"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/service/order"
)

type Handler struct {
	service *order.Service
}

func NewHandler(service *order.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	created, err := h.service.CreateOrder(c.Request.Context(), ownerID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": created})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order ID"})
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	// Customers only see their own orders.
	if c.GetString(middleware.ContextUserRole) == model.RoleCustomer {
		if ownerID, ok := middleware.UserID(c); !ok || found.OwnerID != ownerID {
			c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "order belongs to another user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": found})
}

func (h *Handler) ListOrders(c *gin.Context) {
	filters := &model.OrderFilters{}

	if c.GetString(middleware.ContextUserRole) == model.RoleCustomer {
		ownerID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
			return
		}
		filters.OwnerID = &ownerID
	} else if owner := c.Query("owner_id"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid owner ID"})
			return
		}
		filters.OwnerID = &ownerID
	}

	if status := c.Query("status"); status != "" {
		s := model.OrderStatus(status)
		if !model.IsValidOrderStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order status"})
			return
		}
		filters.Status = &s
	}

	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	orders, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": orders})
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := h.service.UpdateOrderStatus(c.Request.Context(), id, req.Status,
		c.GetString(middleware.ContextUserRole))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}
