package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything that can confirm a live backend connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the health endpoints shared by both binaries.
type Handler struct {
	db Pinger
}

func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": "healthy",
		},
	})
}

// ReadinessCheck reports unhealthy when the primary store is
// unreachable. The API still serves reads through the in-memory mirror,
// but orchestration should stop routing new traffic here.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"data": gin.H{
					"status": "degraded",
					"reason": "primary store unreachable",
				},
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": "ready",
		},
	})
}
