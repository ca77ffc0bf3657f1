package preference

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecopick/recycle-api/internal/middleware"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/service/preference"
)

type Handler struct {
	service *preference.Service
}

func NewHandler(service *preference.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	prefs := rg.Group("/preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.UpdatePreferences)
		prefs.PUT("/contacts/:channel", h.SetContact)
	}
}

func (h *Handler) GetPreferences(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	prefs, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": prefs})
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	var input preference.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), userID, input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}

type setContactRequest struct {
	Address  string `json:"address" binding:"required"`
	Verified bool   `json:"verified"`
}

func (h *Handler) SetContact(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	channel := model.NotificationChannel(c.Param("channel"))
	valid := false
	for _, known := range model.AllChannels {
		if channel == known {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unknown channel"})
		return
	}

	var req setContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := h.service.SetContact(c.Request.Context(), userID, channel, req.Address, req.Verified)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}
