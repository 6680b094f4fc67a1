package router

import (
	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/cache"
	"smartops.app/gateway/internal/http/handler"
	"smartops.app/gateway/internal/http/middleware"
	"smartops.app/gateway/internal/llm"
	"smartops.app/gateway/internal/service"
)

type RouterConfig struct {
	Dispatcher handler.ChatDispatcher
	Registry   *llm.Registry
	History    *cache.HistoryCache
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authService := services.Auth()
	authHandler := handler.NewAuthHandler(authService)
	requireAuth := middleware.RequireAuth(authService)

	api := router.Group("/api")
	{
		AuthRouter(api, authHandler)

		taskHandler := handler.NewTaskHandler(services.Tasks())
		TaskRouter(api.Group("", requireAuth), taskHandler)

		settingsHandler := handler.NewSettingsHandler(services.Settings())
		SettingsRouter(api.Group("/config", requireAuth), settingsHandler)

		alarmHandler := handler.NewAlarmHandler(services.AlarmRules())
		AlarmRouter(api.Group("/alarms", requireAuth), alarmHandler)
	}

	chatHandler := handler.NewChatHandler(cfg.Dispatcher, cfg.Registry, cfg.History)
	ChatRouter(router.Group("", requireAuth), chatHandler)

	// Streamed replies leave no task record and carry no per-user state, so
	// the endpoint takes no session.
	router.POST("/chat/stream", chatHandler.ChatStream)
}
