package repository

import (
	"log"

	"gorm.io/gorm"

	"github.com/hairpro/repricer/server/internal/model"
)

type PriceRepository interface {
	GetLatestRecommendations(limit int) []model.PriceRecommendation
	GetRecommendationsCount(runID string) int64
	GetRecommendationsBySKU(sku string, limit int) []model.PriceRecommendation
	GetLatestRunID() string
	GetRunRecommendations(runID string) []model.PriceRecommendation
}

type gormPriceRepository struct {
	db *gorm.DB
}

func NewGormPriceRepository(db *gorm.DB) PriceRepository {
	return &gormPriceRepository{db: db}
}

func (gpr *gormPriceRepository) GetLatestRecommendations(limit int) []model.PriceRecommendation {
	var recs []model.PriceRecommendation
	err := gpr.db.Order("created_at desc").Limit(limit).Find(&recs).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return []model.PriceRecommendation{}
	}
	return recs
}

func (gpr *gormPriceRepository) GetRecommendationsCount(runID string) int64 {
	var count int64
	query := gpr.db.Model(&model.PriceRecommendation{})
	if runID != "" {
		query = query.Where("run_id = ?", runID)
	}
	if err := query.Count(&count).Error; err != nil {
		log.Printf("Error for query: %v", err)
		return 0
	}
	return count
}

func (gpr *gormPriceRepository) GetRecommendationsBySKU(sku string, limit int) []model.PriceRecommendation {
	var recs []model.PriceRecommendation
	err := gpr.db.Where("sku = ?", sku).
		Order("created_at desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return []model.PriceRecommendation{}
	}
	return recs
}

func (gpr *gormPriceRepository) GetLatestRunID() string {
	var runID string
	err := gpr.db.Model(&model.PriceRecommendation{}).
		Select("run_id").
		Order("created_at desc").
		Limit(1).
		Scan(&runID).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return ""
	}
	return runID
}

func (gpr *gormPriceRepository) GetRunRecommendations(runID string) []model.PriceRecommendation {
	var recs []model.PriceRecommendation
	err := gpr.db.Where("run_id = ?", runID).
		Order("sku").
		Find(&recs).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return []model.PriceRecommendation{}
	}
	return recs
}
