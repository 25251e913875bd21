package models

import "time"

// PriceRecommendation is one approved price for one SKU, produced by a
// pipeline run. Rows from the same run share a RunID.
type PriceRecommendation struct {
	// RunID identifies the pipeline run that produced this row.
	RunID string `json:"run_id"`

	// SKU is the marketplace SKU identifier.
	SKU string `json:"sku"`

	// OwnPrice is our current listing price.
	OwnPrice string `json:"own_price"`

	// CompetitorPrice is the cheapest rival price, empty when no rival
	// listed the SKU.
	CompetitorPrice string `json:"competitor_price"`

	// SpecialPrice is the approved price after margin convergence.
	SpecialPrice string `json:"special_price"`

	// EbitdaValue is the per-unit margin at SpecialPrice.
	EbitdaValue string `json:"ebitda_value"`

	// EbitdaPercent is the margin as a percentage of SpecialPrice.
	EbitdaPercent string `json:"ebitda_percent"`

	// GainPercent is the relative change from OwnPrice to the suggested
	// price.
	GainPercent string `json:"gain_percent"`

	// CreatedAt is when the row was written.
	CreatedAt time.Time `json:"created_at"`
}
