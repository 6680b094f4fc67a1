package router

import (
	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/handler"
)

func SettingsRouter(rg *gin.RouterGroup, h *handler.SettingsHandler) {
	rg.GET("", h.Get)
	rg.POST("", h.Update)
}
