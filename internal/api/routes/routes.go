// server/internal/api/routes/routes.go
package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/api/handlers"
	"swachh-scan-api-server/internal/api/middleware"
	"swachh-scan-api-server/internal/lifecycle"
	"swachh-scan-api-server/internal/metrics"
	"swachh-scan-api-server/internal/registry"
	"swachh-scan-api-server/internal/socket"
	"swachh-scan-api-server/internal/stats"
	"swachh-scan-api-server/internal/store"
)

// Dependencies are built once at startup and shared by every handler.
type Dependencies struct {
	Cfg       config.Config
	Logger    *slog.Logger
	Store     store.Store
	Registry  *registry.Service
	Lifecycle *lifecycle.Service
	Stats     *stats.Aggregator
	Hub       *socket.Hub
	Metrics   *metrics.Metrics
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRouter wires middleware, handlers and routes.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(cors.New(corsConfig(deps.Cfg.Server.AllowedOrigins)))

	healthHandler := &handlers.HealthHandler{Store: deps.Store, Cfg: deps.Cfg}
	facilityHandler := &handlers.FacilityHandler{Registry: deps.Registry}
	staffHandler := &handlers.StaffHandler{Registry: deps.Registry}
	feedbackHandler := &handlers.FeedbackHandler{Lifecycle: deps.Lifecycle}
	statsHandler := &handlers.StatsHandler{Stats: deps.Stats}
	webSocketHandler := &handlers.WebSocketHandler{Hub: deps.Hub, Stats: deps.Stats}

	router.GET("/", healthHandler.Root)
	router.GET("/test", healthHandler.Diagnostics)
	router.GET("/healthz", healthHandler.Diagnostics)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		facilities := api.Group("/facilities")
		{
			facilities.POST("", facilityHandler.CreateFacility)
			facilities.GET("/by-code/:code", facilityHandler.GetFacilityByCode)
		}

		staff := api.Group("/staff")
		{
			staff.POST("", staffHandler.CreateStaff)
			staff.GET("", staffHandler.ListStaff)
		}

		feedback := api.Group("/feedback")
		{
			feedback.POST("", feedbackHandler.SubmitFeedback)
			feedback.GET("", feedbackHandler.ListFeedback)

			// PATCH is canonical; POST is kept for clients that cannot send PATCH.
			for _, method := range []string{http.MethodPatch, http.MethodPost} {
				feedback.Handle(method, "/:id/assign", feedbackHandler.AssignFeedback)
				feedback.Handle(method, "/:id/start", feedbackHandler.StartTask)
				feedback.Handle(method, "/:id/resolve", feedbackHandler.ResolveTask)
			}
		}

		api.GET("/stats", statsHandler.GetStats)

		if deps.Hub != nil {
			api.GET("/dashboard/ws", webSocketHandler.ServeWs)
		}
	}

	return router
}
