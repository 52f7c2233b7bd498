package handler

import (
	"errors"
	"net/http"

	"aacbridge/internal/middleware"
	"aacbridge/internal/service"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connSvc *service.ConnectionService
}

func NewConnectionHandler(connSvc *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connSvc: connSvc}
}

// List returns the caller's active connections, from whichever side
// of the link they sit on.
func (h *ConnectionHandler) List(c *gin.Context) {
	list, err := h.connSvc.ListFor(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		if errors.Is(err, service.ErrUnknownRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": list})
}

// Remove deletes a connection. Either party may remove it; removing
// twice succeeds both times.
func (h *ConnectionHandler) Remove(c *gin.Context) {
	if err := h.connSvc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *ConnectionHandler) SetStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.connSvc.SetStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
