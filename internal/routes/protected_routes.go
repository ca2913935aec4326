package routes

import (
	"career-ebook-generator/internal/constants"
	"career-ebook-generator/internal/ebook"
	"career-ebook-generator/internal/middlewares"
	"github.com/gin-gonic/gin"
)

func RegisterProtectedRoutes(r *gin.Engine, controllerRegistry map[int]any, settings Settings) {

	ebookGroup := r.Group("/api/ebook")

	ebookGroup.Use(middlewares.ConfigurationGuard(settings.ConfigError), middlewares.SessionHandler(settings.SigningKey, settings.TokenTTL, settings.SecureCookie))
	{
		ebookApi := controllerRegistry[constants.Ebook].(ebook.Api)
		ebookGroup.GET("", ebookApi.GetEbook)
		ebookGroup.POST("/generate", ebookApi.Generate)
		ebookGroup.PUT("/document", ebookApi.UpdateDocument)
		ebookGroup.GET("/download/html", ebookApi.DownloadHTML)
		ebookGroup.POST("/convert", ebookApi.Convert)
		ebookGroup.GET("/download/document", ebookApi.DownloadDocument)
	}
}
