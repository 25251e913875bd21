// Package models defines the rows persisted to ClickHouse.
package models

import "time"

// Listing is one scraped marketplace listing as stored in the listing
// history table. Prices are stored as formatted strings so the figures
// survive the round trip without float drift.
type Listing struct {
	// SKU is the marketplace SKU identifier.
	SKU string `json:"sku"`

	// Brand of the product.
	Brand string `json:"brand"`

	// Name is the product title as shown on the page.
	Name string `json:"name"`

	// Price is the listing price in BRL.
	Price string `json:"price"`

	// SellerName is the storefront offering this listing.
	SellerName string `json:"seller_name"`

	// Date is the day the listing was observed.
	Date time.Time `json:"date"`

	// InsertedAt is when the row was written.
	InsertedAt time.Time `json:"inserted_at"`
}
