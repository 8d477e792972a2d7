package routes

import (
	"net/http"
	"slices"
	"time"

	"chorebot-api/api/handlers"
	"chorebot-api/api/middleware"
	"chorebot-api/internal/chatbot"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/config"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP surface is built on. Chatbot is nil
// when no bot token is configured; the webhook route is then not mounted.
type Dependencies struct {
	DB       *gorm.DB
	Tasks    chore.Service
	Shopping shopping.Service
	Users    user.Repository
	Chatbot  chatbot.ChatbotService
}

func SetupRoutes(router *gin.Engine, deps Dependencies, cfg *config.Config, logger *logger.Logger) {
	router.Use(middleware.RequestLogging(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{cfg.Metrics.Path})))

	healthHandler := handlers.NewHealthHandler(deps.DB, logger)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Users, logger)
	shoppingHandler := handlers.NewShoppingHandler(deps.Shopping, logger)
	loginHandler := handlers.NewLoginHandler(deps.Users, cfg.Household.IsAllowed, logger)

	limit := func(c *gin.Context) { c.Next() }
	if cfg.Server.RateLimitRPS > 0 {
		limit = middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, middleware.KeyByChatOrIP()).Handler()
	}

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.POST("/login", limit, loginHandler.Login)

		if deps.Chatbot != nil {
			webhookHandler := handlers.NewWebhookHandler(deps.Chatbot, logger)
			v1.POST("/telegram/webhook", webhookHandler.HandleTelegramWebhook)
		}
	}

	household := v1.Group("", middleware.ChatAuth(cfg.Household.IsAllowed), limit)
	{
		household.GET("/tasks", taskHandler.List)
		household.POST("/tasks", taskHandler.Create)
		household.PATCH("/tasks/:id", taskHandler.Update)
		household.DELETE("/tasks/:id", taskHandler.Delete)
		household.POST("/tasks/:id/done", taskHandler.Done)

		household.GET("/shopping", shoppingHandler.List)
		household.POST("/shopping", shoppingHandler.Create)
		household.GET("/shopping/stats", shoppingHandler.Stats)
		household.PATCH("/shopping/:id/toggle", shoppingHandler.Toggle)
		household.DELETE("/shopping/checked", shoppingHandler.ClearChecked)
		household.DELETE("/shopping/all", shoppingHandler.ClearAll)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

// corsMiddleware allows every origin when none or "*" are configured
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderChatID},
		ExposeHeaders: []string{middleware.HeaderRequestID, "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}
