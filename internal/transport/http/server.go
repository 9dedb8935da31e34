package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pinchat/pinchat-server/internal/auth"
	"github.com/pinchat/pinchat-server/internal/config"
	"github.com/pinchat/pinchat-server/internal/core"
	"github.com/pinchat/pinchat-server/internal/files"
	"github.com/pinchat/pinchat-server/internal/store"
)

// NewServer builds the HTTP server: REST API, upload retrieval and the
// WebSocket endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, fileStore *files.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(st, logger)
	fileHandlers := NewFileHandlers(fileStore, logger)

	api := router.Group("/api")
	{
		api.POST("/register", apiHandlers.Register)
		api.POST("/login", apiHandlers.Login)

		authed := api.Group("")
		authed.Use(AuthMiddleware(authService, logger))
		{
			authed.POST("/rooms", roomHandlers.CreateRoom)
			authed.POST("/rooms/join", roomHandlers.JoinRoom)
			authed.GET("/rooms", roomHandlers.ListRooms)
			authed.GET("/rooms/:name/messages", roomHandlers.ListMessages)
		}
	}

	router.GET("/uploads/:filename", fileHandlers.Download)

	wsHandler := NewWSHandler(hub, authService, cfg.MaxMessageBytes, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
