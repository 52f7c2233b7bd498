package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"aacbridge/config"
	"aacbridge/internal/auth"
	"aacbridge/internal/models"
	"aacbridge/internal/service"
	"aacbridge/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type feedSnapshot struct {
	Type          string                `json:"type"`
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// UpgradeNotificationWS upgrades to WebSocket for the live
// notification feed; query: token. Every snapshot carries the full
// current feed and the recomputed unread count, so the client's badge
// always reflects server truth.
func UpgradeNotificationWS(cfg *config.JWTConfig, hub *ws.Hub, notifSvc *service.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &ws.Client{
			UserID: claims.UserID,
			Role:   claims.Role,
			Send:   make(chan []byte, 16),
		}
		hub.Register(client)
		// TrySend guards against the snapshot callback racing teardown:
		// the subscription's change feed copies its callback list before
		// invoking, so a late callback can arrive after unsubscribe.
		unsubscribe := notifSvc.Subscribe(claims.UserID, func(list []models.Notification, unread int) {
			data, _ := json.Marshal(feedSnapshot{Type: "notifications", Notifications: list, Unread: unread})
			client.TrySend(data)
		})
		defer func() {
			unsubscribe()
			client.Close()
		}()

		conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(feedPongWait))
			return nil
		})
		go func() {
			ticker := time.NewTicker(feedPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
		// The feed is one-way; reads only service pings and detect the
		// client going away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
