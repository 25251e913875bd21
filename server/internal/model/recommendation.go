package model

import "time"

type PriceRecommendation struct {
	RunID           string    `gorm:"column:run_id;primaryKey" json:"run_id"`
	SKU             string    `gorm:"column:sku;primaryKey" json:"sku"`
	OwnPrice        string    `gorm:"column:own_price" json:"own_price"`
	CompetitorPrice string    `gorm:"column:competitor_price" json:"competitor_price"`
	SpecialPrice    string    `gorm:"column:special_price" json:"special_price"`
	EbitdaValue     string    `gorm:"column:ebitda_value" json:"ebitda_value"`
	EbitdaPercent   string    `gorm:"column:ebitda_percent" json:"ebitda_percent"`
	GainPercent     string    `gorm:"column:gain_percent" json:"gain_percent"`
	CreatedAt       time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
}

func (PriceRecommendation) TableName() string {
	return "price_recommendation"
}
