package router

import (
	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/handler"
)

func TaskRouter(rg *gin.RouterGroup, h *handler.TaskHandler) {
	rg.GET("/history", h.History)
	rg.GET("/status", h.Status)
}
