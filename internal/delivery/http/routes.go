package http

import (
	"github.com/gin-gonic/gin"
	"github.com/kainolt/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		flyers := v1.Group("/flyers")
		{
			flyers.POST("/parse", handler.ParseFlyer)
			flyers.POST("/fetch", handler.FetchFlyer)
		}

		offers := v1.Group("/offers")
		{
			offers.POST("/import", handler.ImportOffers)
			offers.POST("/import/csv", handler.ImportCSV)
		}

		v1.GET("/deals", handler.BestDeals)
		v1.GET("/compare", handler.Compare)
		v1.GET("/summary", handler.Summary)
		v1.GET("/guide", handler.ShoppingGuide)

		cart := v1.Group("/cart")
		{
			cart.POST("/optimize", handler.OptimizeCart)
			cart.GET("/list", handler.ShoppingList)
		}
	}

	return router
}
