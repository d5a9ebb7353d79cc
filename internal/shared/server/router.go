package server

import (
	"github.com/gin-gonic/gin"

	"docchat-backend/internal/chats"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

// RouterDeps lists the handlers the router registers.
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	ChatsHandler     *chats.Handler
	Health           *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	deps.DocumentsHandler.RegisterRoutes(api)
	deps.ChatsHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
