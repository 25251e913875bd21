// Package batch projects converged pricing rows down to the (SKU, price)
// pairs the marketplace connectors accept.
package batch

import (
	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/costs"
)

// PriceUpdate is one final price push: the SKU and the price to set.
type PriceUpdate struct {
	SKU          string          `json:"sku"`
	SpecialPrice decimal.Decimal `json:"special_price"`
}

// Assemble projects rows to PriceUpdates with one entry per SKU. The join
// is SKU-unique by construction, but if duplicates ever survive upstream
// the last one wins.
func Assemble(rows []costs.PricingRow) []PriceUpdate {
	index := make(map[string]int, len(rows))
	updates := make([]PriceUpdate, 0, len(rows))

	for _, row := range rows {
		update := PriceUpdate{SKU: row.SKU, SpecialPrice: row.SpecialPrice}
		if i, ok := index[row.SKU]; ok {
			updates[i] = update
			continue
		}
		index[row.SKU] = len(updates)
		updates = append(updates, update)
	}

	return updates
}

// Total sums the batch value, used for run logging.
func Total(updates []PriceUpdate) decimal.Decimal {
	total := decimal.Zero
	for _, u := range updates {
		total = total.Add(u.SpecialPrice)
	}
	return total
}
