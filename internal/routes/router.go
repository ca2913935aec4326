package routes

import (
	"career-ebook-generator/internal/middlewares"
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
)

// Settings carries what the route groups need besides the controllers.
type Settings struct {
	SigningKey     []byte
	TokenTTL       time.Duration
	SecureCookie   bool
	ConfigError    error
	MetricsHandler http.Handler
	AllowedOrigins []string
}

func InitRouter(engine *gin.Engine, controllerRegistry map[int]any, settings Settings) {
	InitMiddleware(engine, settings.AllowedOrigins)

	RegisterProtectedRoutes(engine, controllerRegistry, settings)
	RegisterPublicRoutes(engine, controllerRegistry)
	RegisterUtilityRoutes(engine, settings.MetricsHandler)
}

func InitMiddleware(engine *gin.Engine, allowedOrigins []string) {
	engine.Use(middlewares.CORSMiddleware(allowedOrigins))
}
