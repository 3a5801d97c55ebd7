package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/api/handlers"
	"github.com/frostdev-ops/dashview-backend-go/internal/api/middleware"
	"github.com/frostdev-ops/dashview-backend-go/internal/config"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/metrics"
)

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg *config.Config, h *handlers.Handlers, m *metrics.Metrics, registry *prometheus.Registry, logger *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware(m))

	rateLimiter := middleware.NewRateLimiter(100, 200)
	router.Use(rateLimiter.RateLimitMiddleware())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/ws", h.WebSocketHandler)

	api := router.Group("/api/v1")
	{
		configGroup := api.Group("/config")
		{
			configGroup.GET("/house", h.GetHouseConfig)
			configGroup.PUT("/house", h.SaveHouseConfig)
			configGroup.GET("/house/consistency", h.GetConsistencyReport)
			configGroup.GET("/onboarding", h.GetOnboarding)
			configGroup.POST("/onboarding/complete", h.CompleteOnboarding)
		}

		entities := api.Group("/entities")
		{
			entities.GET("", h.ListEntities)
			entities.GET("/:entity_id", h.GetEntity)
		}
		api.POST("/services/call", h.CallService)
		api.GET("/calendars", h.GetLinkedCalendars)

		mediaGroup := api.Group("/media")
		{
			mediaGroup.GET("/presets", h.GetMediaPresets)
			mediaGroup.POST("/presets/play", h.PlayMediaPreset)
		}

		suggestionsGroup := api.Group("/suggestions")
		{
			suggestionsGroup.GET("", h.GetSuggestions)
			suggestionsGroup.POST("/:rule_id/dismiss", h.DismissSuggestion)
			suggestionsGroup.POST("/:rule_id/action", h.RecordSuggestionAction)
		}

		scenesGroup := api.Group("/scenes")
		{
			scenesGroup.GET("", h.GetScenes)
			scenesGroup.GET("/room/:room_key", h.GetRoomScenes)
			scenesGroup.POST("/:scene_id/activate", h.ActivateScene)
		}

		refreshGroup := api.Group("/refresh")
		{
			refreshGroup.POST("", h.TriggerRefresh)
			refreshGroup.GET("/stats", h.GetRefreshStats)
		}

		api.GET("/ws/stats", h.GetWebSocketStats)
	}

	return router
}
