// Package listing defines the normalized marketplace listing model and the
// normalizer that turns raw scraped offers into a clean, deduplicated table.
package listing

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawListing is a single offer row exactly as extracted from a marketplace
// product page. Prices arrive as raw strings and are only validated during
// normalization.
type RawListing struct {
	SKU        string `json:"sku"`
	Brand      string `json:"brand"`
	Category   string `json:"category"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	SellerName string `json:"seller_name"`
}

// Row is a normalized listing: typed price, category dropped, observation
// date attached. Rows are immutable once created.
type Row struct {
	SKU        string          `json:"sku"`
	Brand      string          `json:"brand"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	SellerName string          `json:"seller_name"`
	Date       time.Time       `json:"date"`
}
