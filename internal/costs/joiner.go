// Package costs joins suggested prices with the cost ledger. The ledger is
// spreadsheet-sourced, so numeric columns arrive as strings with comma
// decimal separators and are parsed here.
package costs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/reconcile"
)

// SKU lifecycle states as recorded in the ledger.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// CostRecord is one ledger row. Numeric fields are kept raw; the joiner owns
// parsing so a malformed cell disqualifies a single row, not the batch.
type CostRecord struct {
	SKU       string
	UnitCost  string
	Freight   string
	InputCost string
	Status    string
}

// PricingRow carries a SKU through EBITDA convergence. SpecialPrice starts
// at the suggested price and is raised until the profitability floor holds;
// the fee and EBITDA columns are recomputed on every step.
type PricingRow struct {
	SKU          string          `json:"sku"`
	SpecialPrice decimal.Decimal `json:"special_price"`

	UnitCost  decimal.Decimal `json:"unit_cost"`
	Freight   decimal.Decimal `json:"freight"`
	InputCost decimal.Decimal `json:"input_cost"`

	Commission    decimal.Decimal `json:"commission"`
	AdminFee      decimal.Decimal `json:"admin_fee"`
	ReverseFee    decimal.Decimal `json:"reverse_fee"`
	EbitdaValue   decimal.Decimal `json:"ebitda_value"`
	EbitdaPercent decimal.Decimal `json:"ebitda_percent"`
}

// CostDataError reports an unparsable ledger cell. The row is skipped, the
// batch continues.
type CostDataError struct {
	SKU   string
	Field string
	Value string
}

func (e *CostDataError) Error() string {
	return fmt.Sprintf("costs: sku %s has unparsable %s %q", e.SKU, e.Field, e.Value)
}

// Joiner merges SkuComparisons with ledger cost records.
type Joiner struct {
	logger *slog.Logger
}

func NewJoiner(logger *slog.Logger) *Joiner {
	return &Joiner{logger: logger}
}

// Join left-joins comparisons with cost records by SKU. Comparisons without
// a cost record are dropped (EBITDA needs costs), INACTIVE SKUs are dropped
// regardless, and rows with malformed cost cells are skipped with a logged
// CostDataError. Output keeps the comparison order.
func (j *Joiner) Join(comparisons []reconcile.SkuComparison, records map[string]CostRecord) []PricingRow {
	rows := make([]PricingRow, 0, len(comparisons))

	for _, cmp := range comparisons {
		rec, ok := records[cmp.SKU]
		if !ok {
			j.logger.Debug("No cost record for SKU, dropping", "sku", cmp.SKU)
			continue
		}
		if rec.Status == StatusInactive {
			j.logger.Debug("SKU inactive, dropping", "sku", cmp.SKU)
			continue
		}

		row := PricingRow{SKU: cmp.SKU, SpecialPrice: cmp.SuggestedPrice}

		var err error
		if row.UnitCost, err = parseLedgerDecimal(rec.UnitCost); err != nil {
			j.skip(&CostDataError{SKU: cmp.SKU, Field: "unit_cost", Value: rec.UnitCost})
			continue
		}
		if row.Freight, err = parseLedgerDecimal(rec.Freight); err != nil {
			j.skip(&CostDataError{SKU: cmp.SKU, Field: "freight", Value: rec.Freight})
			continue
		}
		if row.InputCost, err = parseLedgerDecimal(rec.InputCost); err != nil {
			j.skip(&CostDataError{SKU: cmp.SKU, Field: "input_cost", Value: rec.InputCost})
			continue
		}

		rows = append(rows, row)
	}

	return rows
}

func (j *Joiner) skip(err *CostDataError) {
	j.logger.Warn("Skipping SKU", "sku", err.SKU, "error", err)
}

// parseLedgerDecimal normalizes a spreadsheet numeric cell: surrounding
// whitespace trimmed, comma decimal separator replaced with a dot. Empty
// cells and the literal "None" count as missing.
func parseLedgerDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return decimal.Decimal{}, fmt.Errorf("missing value")
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}
