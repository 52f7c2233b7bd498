package handler

import (
	"errors"
	"net/http"

	"aacbridge/internal/domain"
	"aacbridge/internal/middleware"
	"aacbridge/internal/service"

	"github.com/gin-gonic/gin"
)

type PushHandler struct {
	pushSvc *service.PushService
}

func NewPushHandler(pushSvc *service.PushService) *PushHandler {
	return &PushHandler{pushSvc: pushSvc}
}

type tokenReq struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
	DeviceID string `json:"deviceId"`
}

// RegisterToken stores the caller's device push token; the latest
// registering device wins.
func (h *PushHandler) RegisterToken(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.pushSvc.RegisterToken(c.Request.Context(), middleware.GetUserID(c), req.Token, req.Platform, req.DeviceID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeactivateToken disables the caller's push token on logout.
func (h *PushHandler) DeactivateToken(c *gin.Context) {
	if err := h.pushSvc.DeactivateToken(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deactivate failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TestPush sends the caller a push notification to verify their token
// registration end to end.
func (h *PushHandler) TestPush(c *gin.Context) {
	uid := middleware.GetUserID(c)
	delivered, err := h.pushSvc.Send(c.Request.Context(), uid, domain.NotifTypeTest, "Test Notification", "Push delivery is working!", map[string]interface{}{"test": true})
	if err != nil {
		if errors.Is(err, service.ErrNoPushToken) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no push token registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "send failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}
