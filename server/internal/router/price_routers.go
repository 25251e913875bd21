package router

import (
	"github.com/gin-gonic/gin"

	"github.com/hairpro/repricer/server/internal/handler"
)

func registerPriceRoutes(router *gin.RouterGroup, priceHandler *handler.PriceHandler) {
	prices := router.Group("/prices")
	{
		prices.GET("/latest", priceHandler.GetLatest)
		prices.GET("/count", priceHandler.GetCount)
	}

	runs := router.Group("/runs")
	{
		runs.GET("/latest", priceHandler.GetLatestRun)
	}
}
