package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"launder-manager-backend/config"
	"launder-manager-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. wsHandler serves the
// observer WebSocket endpoint.
func NewRouter(cfg *config.ServerConfig, handler *Handler, wsHandler http.Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Configuration upload and read-back
		api.POST("/proprietors/upload-configuration", handler.UploadConfiguration)
		api.GET("/proprietors", caching, handler.ListConfigurations)
		api.GET("/proprietors/:id", caching, handler.GetConfiguration)

		// Machine start/stop actions (same transition logic as the socket)
		api.POST("/machines/:id/start", handler.StartMachine)
		api.POST("/machines/:id/stop", handler.StopMachine)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	// Observer socket; not rate limited, a connection is long-lived.
	r.GET("/ws", gin.WrapH(wsHandler))

	return r
}
