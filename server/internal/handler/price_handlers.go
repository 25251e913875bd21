package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hairpro/repricer/server/internal/service"
)

type PriceHandler struct {
	priceService *service.PricesService
}

func NewPriceHandler(service *service.PricesService) *PriceHandler {
	return &PriceHandler{
		priceService: service,
	}
}

func (h *PriceHandler) GetLatest(c *gin.Context) {
	sku := c.Query("sku")
	if sku != "" {
		c.JSON(http.StatusOK, h.priceService.GetRecommendationsBySKU(sku))
		return
	}
	c.JSON(http.StatusOK, h.priceService.GetLatestRecommendations())
}

func (h *PriceHandler) GetCount(c *gin.Context) {
	runID := c.Query("run_id")
	count := h.priceService.GetCount(runID)
	if runID != "" {
		c.JSON(http.StatusOK, gin.H{runID: count})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *PriceHandler) GetLatestRun(c *gin.Context) {
	runID, recs := h.priceService.GetLatestRun()
	if runID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs recorded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":          runID,
		"recommendations": recs,
	})
}
