package router

import (
	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/handler"
)

func ChatRouter(rg *gin.RouterGroup, h *handler.ChatHandler) {
	rg.POST("/chat", h.Chat)
	rg.POST("/analyze", h.Analyze)
}
