package router

import (
	"github.com/gin-gonic/gin"

	"smartops.app/gateway/internal/http/handler"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
}
