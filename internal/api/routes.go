package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the pricing endpoints under /api and the prometheus endpoint at /metrics
func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/properties", handler.IngestProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.POST("/model/train", handler.TrainModel)
		api.GET("/model", handler.GetModel)
		api.POST("/predict", handler.Predict)
		api.GET("/impact", handler.GetImpacts)
		api.GET("/impact/:feature", handler.GetImpact)
		api.GET("/sqft-impact", handler.GetSqftImpact)
		api.POST("/compare", handler.Compare)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
