// Package reconcile builds the per-SKU competitor comparison: it splits
// listings into the managed seller's own offers and competitor offers, picks
// the representative competitor price and derives a suggested price.
package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/listing"
)

// SkuComparison is the outcome of comparing our offer for one SKU against
// the cheapest competitor offer for the same SKU.
type SkuComparison struct {
	SKU      string          `json:"sku"`
	OwnPrice decimal.Decimal `json:"own_price"`

	// HasCompetitor reports whether any competitor listed this SKU.
	// CompetitorPrice and DifferencePrice are meaningful only when true.
	HasCompetitor   bool            `json:"has_competitor"`
	CompetitorPrice decimal.Decimal `json:"competitor_price"`
	DifferencePrice decimal.Decimal `json:"difference_price"`

	// SuggestedPrice is always set: the undercut price when we are below
	// the cheapest competitor, our own price otherwise.
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	GainPercent    decimal.Decimal `json:"gain_percent"`
}

// ZeroOwnPriceError marks a SKU whose own price is zero. The gain percentage
// would divide by zero, so the row is skipped and the batch continues.
type ZeroOwnPriceError struct {
	SKU string
}

func (e *ZeroOwnPriceError) Error() string {
	return fmt.Sprintf("reconcile: sku %s has zero own price, skipped", e.SKU)
}

// Reconciler derives SkuComparisons from normalized listings.
type Reconciler struct {
	ownSeller string
	undercut  decimal.Decimal
	logger    *slog.Logger
}

// NewReconciler creates a Reconciler. ownSeller is the managed seller name
// (exact match); undercut is the amount subtracted from a competitor price
// to produce the suggested price.
func NewReconciler(ownSeller string, undercut decimal.Decimal, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		ownSeller: ownSeller,
		undercut:  undercut,
		logger:    logger,
	}
}

// Reconcile produces one SkuComparison per SKU we list ourselves, in first
// occurrence order. Competitor selection is the per-SKU minimum price, ties
// broken by input order. SKUs with a zero own price are logged and dropped;
// they never abort the batch.
func (r *Reconciler) Reconcile(rows []listing.Row) []SkuComparison {
	ownPrices := make(map[string]decimal.Decimal)
	ownOrder := make([]string, 0, len(rows))

	competitorMin := make(map[string]decimal.Decimal)

	for _, row := range rows {
		if row.SellerName == r.ownSeller {
			if _, ok := ownPrices[row.SKU]; !ok {
				ownPrices[row.SKU] = row.Price
				ownOrder = append(ownOrder, row.SKU)
			}
			continue
		}
		// Strictly-less keeps the first occurrence on ties.
		if best, ok := competitorMin[row.SKU]; !ok || row.Price.LessThan(best) {
			competitorMin[row.SKU] = row.Price
		}
	}

	comparisons := make([]SkuComparison, 0, len(ownOrder))
	for _, sku := range ownOrder {
		own := ownPrices[sku]
		if own.IsZero() {
			err := &ZeroOwnPriceError{SKU: sku}
			r.logger.Warn("Skipping SKU", "sku", sku, "error", err)
			continue
		}

		cmp := SkuComparison{SKU: sku, OwnPrice: own}

		competitor, ok := competitorMin[sku]
		switch {
		case !ok:
			cmp.SuggestedPrice = own.Round(6)
		case own.LessThan(competitor):
			cmp.HasCompetitor = true
			cmp.CompetitorPrice = competitor
			cmp.DifferencePrice = competitor.Sub(own).Sub(r.undercut).Round(6)
			cmp.SuggestedPrice = competitor.Sub(r.undercut).Round(6)
		default:
			// Already at or above market; keep our price.
			cmp.HasCompetitor = true
			cmp.CompetitorPrice = competitor
			cmp.DifferencePrice = competitor.Sub(own).Sub(r.undercut).Round(6)
			cmp.SuggestedPrice = own.Round(6)
		}

		cmp.GainPercent = cmp.SuggestedPrice.Div(own).
			Sub(decimal.NewFromInt(1)).
			Round(2).
			Mul(decimal.NewFromInt(100)).
			Round(2)

		comparisons = append(comparisons, cmp)
	}

	return comparisons
}
