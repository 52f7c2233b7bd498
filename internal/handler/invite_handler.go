package handler

import (
	"errors"
	"net/http"

	"aacbridge/internal/middleware"
	"aacbridge/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	inviteSvc *service.InviteService
	authSvc   *service.AuthService
}

func NewInviteHandler(inviteSvc *service.InviteService, authSvc *service.AuthService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc, authSvc: authSvc}
}

func (h *InviteHandler) identity(c *gin.Context) service.Identity {
	id := service.Identity{ID: middleware.GetUserID(c), Contact: middleware.GetEmail(c)}
	if p, err := h.authSvc.GetUserProfile(c.Request.Context(), id.ID); err == nil {
		id.Name = p.DisplayName
	}
	return id
}

// Issue creates a new invite code for the calling parent.
func (h *InviteHandler) Issue(c *gin.Context) {
	invite, err := h.inviteSvc.Issue(c.Request.Context(), h.identity(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite code"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        invite.ID,
		"code":      invite.Code,
		"expiresAt": invite.ExpiresAt,
	})
}

func (h *InviteHandler) List(c *gin.Context) {
	list, err := h.inviteSvc.ListByIssuer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invites": list})
}

func (h *InviteHandler) Revoke(c *gin.Context) {
	if err := h.inviteSvc.Revoke(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type redeemReq struct {
	Code string `json:"code"`
}

// Redeem consumes an invite code and connects the calling child to
// the issuing parent. Each rejection maps to its own status so the
// client can phrase the message precisely.
func (h *InviteHandler) Redeem(c *gin.Context) {
	var req redeemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conn, err := h.inviteSvc.Redeem(c.Request.Context(), req.Code, h.identity(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "please enter an invite code"})
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid invite code"})
		case errors.Is(err, service.ErrCodeAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": "this invite code has already been used"})
		case errors.Is(err, service.ErrCodeExpired):
			c.JSON(http.StatusGone, gin.H{"error": "this invite code has expired"})
		case errors.Is(err, service.ErrAlreadyConnected):
			c.JSON(http.StatusConflict, gin.H{"error": "you are already connected to this parent"})
		default:
			// The connection may exist even though the code could not be
			// marked used; the caller must learn about it either way.
			if conn != nil {
				c.JSON(http.StatusMultiStatus, gin.H{
					"connection": conn,
					"parent": gin.H{
						"id":      conn.ParentID,
						"name":    conn.ParentName,
						"contact": conn.ParentContact,
					},
					"warning": "connected, but the invite code could not be marked used",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redeem failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"connection": conn,
		"parent": gin.H{
			"id":      conn.ParentID,
			"name":    conn.ParentName,
			"contact": conn.ParentContact,
		},
	})
}
