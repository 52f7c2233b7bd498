package handler

import (
	"net/http"

	"aacbridge/internal/middleware"
	"aacbridge/internal/service"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	presenceSvc *service.PresenceService
}

func NewPresenceHandler(presenceSvc *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceSvc: presenceSvc}
}

type presenceReq struct {
	State string `json:"state" binding:"required,oneof=foreground background"`
}

// Update records the caller's app state. Backgrounding without a push
// token starts the fallback poller; foregrounding runs the missed
// check and stops it.
func (h *PresenceHandler) Update(c *gin.Context) {
	var req presenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uid := middleware.GetUserID(c)
	if req.State == "background" {
		polling, err := h.presenceSvc.Background(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "presence update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": req.State, "polling": polling})
		return
	}
	if err := h.presenceSvc.Foreground(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "presence update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": req.State, "polling": false})
}
