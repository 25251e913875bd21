package service

import (
	"github.com/hairpro/repricer/server/internal/model"
	"github.com/hairpro/repricer/server/internal/repository"
)

type PricesService struct {
	repo repository.PriceRepository
}

func NewPricesService(repo repository.PriceRepository) *PricesService {
	return &PricesService{
		repo: repo,
	}
}

func (ps *PricesService) GetLatestRecommendations() []model.PriceRecommendation {
	return ps.repo.GetLatestRecommendations(10)
}

func (ps *PricesService) GetRecommendationsBySKU(sku string) []model.PriceRecommendation {
	return ps.repo.GetRecommendationsBySKU(sku, 10)
}

func (ps *PricesService) GetCount(runID string) int64 {
	return ps.repo.GetRecommendationsCount(runID)
}

// GetLatestRun returns the most recent run and all its recommendations.
func (ps *PricesService) GetLatestRun() (string, []model.PriceRecommendation) {
	runID := ps.repo.GetLatestRunID()
	if runID == "" {
		return "", []model.PriceRecommendation{}
	}
	return runID, ps.repo.GetRunRecommendations(runID)
}
