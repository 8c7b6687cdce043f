package routes

import (
	"net/http"

	"go-safeher/chat"
	"go-safeher/handlers"
	"go-safeher/logging"
	"go-safeher/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// SetupRouter wires the HTTP API. geocoder may be nil, in which case
// address based location updates are rejected.
func SetupRouter(store *session.Store, advisor chat.Advisor, geocoder *maps.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinMiddleware(logging.OrNop(logger)), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Hello, welcome to SafeHer!",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// api routes
	api := r.Group("/api/safeher")
	{
		api.POST("/advice", func(c *gin.Context) {
			handlers.AskAdviceHandler(c, advisor)
		})

		api.POST("/sessions", func(c *gin.Context) {
			handlers.CreateSessionHandler(c, store)
		})
		api.GET("/sessions/:id", func(c *gin.Context) {
			handlers.GetSessionStatus(c, store)
		})
		api.DELETE("/sessions/:id", func(c *gin.Context) {
			handlers.DeleteSessionHandler(c, store)
		})
		api.GET("/sessions/:id/messages", func(c *gin.Context) {
			handlers.GetMessagesHandler(c, store)
		})
		api.POST("/sessions/:id/messages", func(c *gin.Context) {
			handlers.PostMessageHandler(c, store)
		})
		api.PUT("/sessions/:id/mode", func(c *gin.Context) {
			handlers.SwitchModeHandler(c, store)
		})
		api.POST("/sessions/:id/location", func(c *gin.Context) {
			handlers.SetLocationHandler(c, store, geocoder)
		})
		api.GET("/sessions/:id/transcript", func(c *gin.Context) {
			handlers.ExportTranscriptHandler(c, store)
		})
	}

	return r
}
