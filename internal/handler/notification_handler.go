package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"aacbridge/internal/middleware"
	"aacbridge/internal/repository"
	"aacbridge/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
	authSvc  *service.AuthService
	history  *repository.HistoryRepository
}

func NewNotificationHandler(notifSvc *service.NotificationService, authSvc *service.AuthService, history *repository.HistoryRepository) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, authSvc: authSvc, history: history}
}

type buttonPressReq struct {
	Message string `json:"message"`
}

// ButtonPress fans the child's message out to every connected parent.
func (h *NotificationHandler) ButtonPress(c *gin.Context) {
	var req buttonPressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	child := service.Identity{ID: middleware.GetUserID(c), Contact: middleware.GetEmail(c)}
	if p, err := h.authSvc.GetUserProfile(c.Request.Context(), child.ID); err == nil {
		child.Name = p.DisplayName
	}
	result, err := h.notifSvc.SendButtonPress(c.Request.Context(), child, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		case errors.Is(err, service.ErrNoParentConnection):
			c.JSON(http.StatusNotFound, gin.H{"error": "no active parent connection"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "send failed"})
		}
		return
	}
	status := http.StatusCreated
	if result.Failed > 0 {
		// Some parents got the message, some did not.
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

// List returns the caller's notification feed with the recomputed
// unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notifSvc.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": service.UnreadCount(list)})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifSvc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type notifyReq struct {
	TargetUserID string                 `json:"targetUserId" binding:"required"`
	Type         string                 `json:"type" binding:"required"`
	Title        string                 `json:"title"`
	Body         string                 `json:"body"`
	Data         map[string]interface{} `json:"data"`
}

// Notify enqueues a trigger for the target user; delivery is handled
// asynchronously by the trigger processor.
func (h *NotificationHandler) Notify(c *gin.Context) {
	var req notifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.notifSvc.NotifyUser(c.Request.Context(), middleware.GetUserID(c), req.TargetUserID, req.Type, req.Title, req.Body, req.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notify failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"triggerId": id})
}

type broadcastReq struct {
	TargetUserIDs []string               `json:"targetUserIds" binding:"required,min=1"`
	Title         string                 `json:"title"`
	Body          string                 `json:"body"`
	Data          map[string]interface{} `json:"data"`
}

// Broadcast enqueues one trigger per target user.
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req broadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created := h.notifSvc.Broadcast(c.Request.Context(), middleware.GetUserID(c), req.TargetUserIDs, req.Title, req.Body, req.Data)
	c.JSON(http.StatusAccepted, gin.H{"created": created})
}

// PendingTriggers returns the caller's queued, not-yet-delivered
// triggers.
func (h *NotificationHandler) PendingTriggers(c *gin.Context) {
	list, err := h.notifSvc.PendingTriggers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"triggers": list})
}

func (h *NotificationHandler) History(c *gin.Context) {
	list, err := h.history.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": list})
}

// PurgeHistory deletes the caller's history entries older than the
// given number of days (default 30).
func (h *NotificationHandler) PurgeHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	purged, err := h.history.PurgeOlder(c.Request.Context(), middleware.GetUserID(c), cutoff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "purge failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
