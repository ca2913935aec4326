package routes

import (
	"career-ebook-generator/internal/controllers"
	"github.com/gin-gonic/gin"
	"net/http"
)

func RegisterUtilityRoutes(r *gin.Engine, metricsHandler http.Handler) {
	r.GET("/heartbeat", controllers.GetHeartBeat)
	r.GET("/status", controllers.GetStatus)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
