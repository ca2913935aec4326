package routes

import (
	"career-ebook-generator/internal/auth"
	"career-ebook-generator/internal/constants"
	"career-ebook-generator/internal/web"
	"github.com/gin-gonic/gin"
)

func RegisterPublicRoutes(r *gin.Engine, controllerRegistry map[int]any) {
	pageApi := controllerRegistry[constants.Page].(web.Api)
	r.GET("/", pageApi.Index)

	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/api/session", authApi.StartSession)
	r.DELETE("/api/session", authApi.EndSession)
}
