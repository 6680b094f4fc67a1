package router

import (
	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/handler"
)

func AlarmRouter(rg *gin.RouterGroup, h *handler.AlarmHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
