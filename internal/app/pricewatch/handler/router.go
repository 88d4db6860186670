package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Pricewatch с использованием Gin
func SetupRoutes(productHandler *ProductHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("pricewatch"))

	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "pricewatch",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/products", productHandler.ListProducts)
		api.POST("/products", productHandler.AddProduct)
		api.POST("/products/check", productHandler.CheckNow)
		api.GET("/products/export", productHandler.ExportCSV)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/products/:id/history", productHandler.GetHistory)
		api.DELETE("/products/:id", productHandler.DeleteProduct)
	}

	return router
}
