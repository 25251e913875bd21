package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoListings is returned when the scrape produced no rows at all.
// An empty scrape means the pages changed or the source is down, so the
// whole batch is aborted rather than pushing prices from nothing.
var ErrNoListings = errors.New("listing: no rows to normalize")

// InvalidListingError reports a malformed raw row. It aborts the batch:
// a single bad price means the page extraction can no longer be trusted.
type InvalidListingError struct {
	SKU    string
	Price  string
	Reason string
}

func (e *InvalidListingError) Error() string {
	return fmt.Sprintf("listing: invalid row sku=%s price=%q: %s", e.SKU, e.Price, e.Reason)
}

// NormalizerConfig controls which rows survive normalization.
type NormalizerConfig struct {
	// MarketplaceSeller is the marketplace's own storefront name. The
	// marketplace lists itself as a seller on its pages; those rows are
	// not competitors and are dropped.
	MarketplaceSeller string
}

// Normalize converts raw scraped offers into normalized rows: prices parsed
// and validated, full-row duplicates removed (first occurrence kept),
// marketplace self-listings dropped, category discarded and the observation
// date attached. Input order is preserved.
func Normalize(raws []RawListing, cfg NormalizerConfig, observed time.Time) ([]Row, error) {
	if len(raws) == 0 {
		return nil, ErrNoListings
	}

	seen := make(map[string]struct{}, len(raws))
	rows := make([]Row, 0, len(raws))

	for _, raw := range raws {
		price, err := decimal.NewFromString(strings.TrimSpace(raw.Price))
		if err != nil {
			return nil, &InvalidListingError{SKU: raw.SKU, Price: raw.Price, Reason: "price is not a number"}
		}
		if price.IsNegative() {
			return nil, &InvalidListingError{SKU: raw.SKU, Price: raw.Price, Reason: "price is negative"}
		}

		if cfg.MarketplaceSeller != "" && strings.Contains(raw.SellerName, cfg.MarketplaceSeller) {
			continue
		}

		key := raw.SKU + "\x00" + raw.Brand + "\x00" + raw.Name + "\x00" + price.String() + "\x00" + raw.SellerName
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rows = append(rows, Row{
			SKU:        raw.SKU,
			Brand:      raw.Brand,
			Name:       raw.Name,
			Price:      price,
			SellerName: raw.SellerName,
			Date:       observed,
		})
	}

	return rows, nil
}
