package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/middleware"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/service/notification"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the history/stats surface. Enqueueing is an
// internal concern of the services; admins get a direct endpoint for
// operational announcements.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.GetHistory)
		notifications.GET("/stats", h.GetStats)
		notifications.POST("", auth.RequireRole(model.RoleAdmin), h.Enqueue)
	}
}

type enqueueRequest struct {
	UserID       uuid.UUID                  `json:"user_id" binding:"required"`
	Channel      model.NotificationChannel  `json:"channel" binding:"required"`
	Category     string                     `json:"category"`
	Priority     model.NotificationPriority `json:"priority"`
	Title        string                     `json:"title" binding:"required"`
	Message      string                     `json:"message" binding:"required"`
	ScheduledFor *time.Time                 `json:"scheduled_for"`
	ExpiresAt    *time.Time                 `json:"expires_at"`
}

func (h *Handler) Enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	id, err := h.service.Enqueue(c.Request.Context(), notification.EnqueueInput{
		UserID:       req.UserID,
		Channel:      req.Channel,
		Category:     req.Category,
		Priority:     req.Priority,
		Title:        req.Title,
		Message:      req.Message,
		ScheduledFor: req.ScheduledFor,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "success", "data": gin.H{"notification_id": id}})
}

func (h *Handler) GetHistory(c *gin.Context) {
	filters := &model.NotificationFilters{}

	// Non-admin callers only see their own history.
	if c.GetString(middleware.ContextUserRole) != model.RoleAdmin {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
			return
		}
		filters.UserID = &userID
	} else if user := c.Query("user_id"); user != "" {
		userID, err := uuid.Parse(user)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid user ID"})
			return
		}
		filters.UserID = &userID
	}

	if status := c.Query("status"); status != "" {
		s := model.NotificationStatus(status)
		filters.Status = &s
	}
	if channel := c.Query("channel"); channel != "" {
		ch := model.NotificationChannel(channel)
		filters.Channel = &ch
	}
	if err := c.ShouldBindQuery(&filters.Pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), filters)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": history})
}

func (h *Handler) GetStats(c *gin.Context) {
	period := model.StatsPeriod(c.DefaultQuery("period", string(model.PeriodDay)))
	switch period {
	case model.PeriodDay, model.PeriodWeek, model.PeriodMonth, model.PeriodYear:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid stats period"})
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}
