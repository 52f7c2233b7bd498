package router

import (
	"log"
	"time"

	"aacbridge/config"
	"aacbridge/internal/domain"
	"aacbridge/internal/handler"
	"aacbridge/internal/middleware"
	"aacbridge/internal/models"
	"aacbridge/internal/repository"
	"aacbridge/internal/service"
	"aacbridge/internal/store"
	"aacbridge/internal/ws"
	"aacbridge/pkg/push"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and returns the
// engine plus the trigger processor, which the caller owns and must
// Close on shutdown.
func Setup(cfg *config.Config, db *gorm.DB) (*gin.Engine, *service.TriggerProcessor) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	recordStore := store.New(db)

	// Repositories
	userRepo := repository.NewUserRepository(recordStore)
	inviteRepo := repository.NewInviteRepository(recordStore)
	connRepo := repository.NewConnectionRepository(recordStore)
	notifRepo := repository.NewNotificationRepository(recordStore)
	triggerRepo := repository.NewTriggerRepository(recordStore)
	historyRepo := repository.NewHistoryRepository(recordStore)
	tokenRepo := repository.NewTokenRepository(recordStore)

	// Push provider: FCM when a service account is configured, the
	// Expo relay otherwise.
	var provider push.Provider
	if cfg.Push.FirebaseCredentialsPath != "" {
		fcm, err := push.NewFCMProvider(cfg.Push.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("[push] FCM init failed, falling back to Expo relay: %v", err)
			provider = push.NewExpoProvider(cfg.Push.ExpoURL, cfg.Push.Timeout)
		} else {
			log.Printf("[push] delivering via FCM")
			provider = fcm
		}
	} else {
		log.Printf("[push] delivering via Expo relay")
		provider = push.NewExpoProvider(cfg.Push.ExpoURL, cfg.Push.Timeout)
	}

	notifHub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	inviteSvc := service.NewInviteService(inviteRepo, connRepo, cfg.Notification.InviteTTL)
	connSvc := service.NewConnectionService(connRepo)
	pushSvc := service.NewPushService(tokenRepo, historyRepo, provider)
	notifSvc := service.NewNotificationService(notifRepo, connRepo, triggerRepo)
	presenceSvc := service.NewPresenceService(notifRepo, tokenRepo,
		cfg.Notification.PollInterval, cfg.Notification.MissedThreshold,
		func(userID string, latest models.Notification, unread int) {
			notifHub.BroadcastToUser(userID, gin.H{
				"type":         "missed",
				"notification": latest,
				"unread":       unread,
			})
		})
	processor := service.NewTriggerProcessor(triggerRepo, pushSvc, historyRepo)
	processor.Start()

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	inviteHandler := handler.NewInviteHandler(inviteSvc, authSvc)
	connHandler := handler.NewConnectionHandler(connSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc, authSvc, historyRepo)
	pushHandler := handler.NewPushHandler(pushSvc)
	presenceHandler := handler.NewPresenceHandler(presenceSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}
		api.GET("/users/:id/profile", authMw, authHandler.GetProfile)

		invites := api.Group("/invites")
		invites.Use(authMw)
		{
			invites.POST("", middleware.RequireRole(domain.RoleParent), inviteHandler.Issue)
			invites.GET("", middleware.RequireRole(domain.RoleParent), inviteHandler.List)
			invites.DELETE("/:id", middleware.RequireRole(domain.RoleParent), inviteHandler.Revoke)
			invites.POST("/redeem", middleware.RequireRole(domain.RoleChild), inviteHandler.Redeem)
		}

		api.GET("/connections", authMw, connHandler.List)
		api.DELETE("/connections/:id", authMw, connHandler.Remove)
		api.PATCH("/connections/:id/status", authMw, connHandler.SetStatus)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.POST("/push-token", pushHandler.RegisterToken)
			me.DELETE("/push-token", pushHandler.DeactivateToken)
			me.POST("/push-test", pushHandler.TestPush)
			me.POST("/presence", presenceHandler.Update)
			me.GET("/notifications", notifHandler.List)
			me.PUT("/notifications/:id/read", notifHandler.MarkRead)
			me.GET("/triggers", notifHandler.PendingTriggers)
			me.GET("/notification-history", notifHandler.History)
			me.DELETE("/notification-history", notifHandler.PurgeHistory)
		}

		api.POST("/notifications/button-press", authMw, middleware.RequireRole(domain.RoleChild), notifHandler.ButtonPress)
		api.POST("/notifications/notify", authMw, notifHandler.Notify)
		api.POST("/notifications/broadcast", authMw, middleware.RequireRole(domain.RoleParent), notifHandler.Broadcast)
	}

	r.GET("/ws/notifications", handler.UpgradeNotificationWS(&cfg.JWT, notifHub, notifSvc))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "wsClients": notifHub.ClientCount()})
	})

	return r, processor
}
