// Package ebitda computes per-SKU profitability and raises prices until a
// configured EBITDA floor is met.
package ebitda

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/costs"
)

// Config holds the convergence parameters. It is fixed for the lifetime of
// an Engine; a run never mixes rate sets.
type Config struct {
	// CommissionRate, AdminRate and ReverseRate are fractions of the price.
	CommissionRate decimal.Decimal
	AdminRate      decimal.Decimal
	ReverseRate    decimal.Decimal

	// FloorPercent is the minimum EBITDA percentage (e.g. 4.0 for 4%).
	FloorPercent decimal.Decimal

	// Increment is added to the price on every convergence step.
	Increment decimal.Decimal

	// MaxIterations caps the loop per row. A zero increment or an
	// unreachable floor would otherwise never terminate.
	MaxIterations int

	// Workers is the number of goroutines converging rows. Rows are
	// independent, so any value >= 1 is correct.
	Workers int
}

// ZeroPriceError marks a row whose price is zero: the EBITDA percentage is
// undefined. The row is dropped, the batch continues.
type ZeroPriceError struct {
	SKU string
}

func (e *ZeroPriceError) Error() string {
	return fmt.Sprintf("ebitda: sku %s has zero price", e.SKU)
}

// ConvergenceLimitError marks a row that did not reach the floor within
// MaxIterations steps. The row is dropped, the batch continues.
type ConvergenceLimitError struct {
	SKU        string
	Iterations int
}

func (e *ConvergenceLimitError) Error() string {
	return fmt.Sprintf("ebitda: sku %s did not reach floor after %d iterations", e.SKU, e.Iterations)
}

// Engine converges PricingRows toward the EBITDA floor.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an Engine. MaxIterations defaults to 100000 and Workers
// to 1 when unset.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 100000
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{cfg: cfg, logger: logger}
}

// CalcRow fills the fee and EBITDA columns of a row at its current price.
//
//	commission = round(price * commission_rate, 2)
//	admin      = round(price * admin_rate, 2)
//	reverse    = round(price * reverse_rate, 2)
//	ebitda     = price - unit_cost - freight - input_cost - fees
//	ebitda %   = round(ebitda / price, 3) * 100
func (e *Engine) CalcRow(row costs.PricingRow) (costs.PricingRow, error) {
	return e.calc(row, 3)
}

// calc recomputes the row at its current price, rounding the EBITDA ratio
// to pctPlaces decimals before scaling to a percentage. The initial
// computation uses 3 places, the loop recomputation 2.
func (e *Engine) calc(row costs.PricingRow, pctPlaces int32) (costs.PricingRow, error) {
	if row.SpecialPrice.IsZero() {
		return row, &ZeroPriceError{SKU: row.SKU}
	}

	row.Commission = row.SpecialPrice.Mul(e.cfg.CommissionRate).Round(2)
	row.AdminFee = row.SpecialPrice.Mul(e.cfg.AdminRate).Round(2)
	row.ReverseFee = row.SpecialPrice.Mul(e.cfg.ReverseRate).Round(2)
	row.EbitdaValue = row.SpecialPrice.
		Sub(row.UnitCost).
		Sub(row.Freight).
		Sub(row.InputCost).
		Sub(row.Commission).
		Sub(row.AdminFee).
		Sub(row.ReverseFee)
	row.EbitdaPercent = row.EbitdaValue.Div(row.SpecialPrice).
		Round(pctPlaces).
		Mul(decimal.NewFromInt(100))

	return row, nil
}

// ConvergeRow raises the row's price by Increment until the EBITDA floor is
// met. The comparison is strict, so a row exactly at the floor never
// iterates, and the price is non-decreasing across iterations.
func (e *Engine) ConvergeRow(row costs.PricingRow) (costs.PricingRow, error) {
	row, err := e.CalcRow(row)
	if err != nil {
		return row, err
	}

	for i := 0; row.EbitdaPercent.LessThan(e.cfg.FloorPercent); i++ {
		if i >= e.cfg.MaxIterations {
			return row, &ConvergenceLimitError{SKU: row.SKU, Iterations: i}
		}
		row.SpecialPrice = row.SpecialPrice.Add(e.cfg.Increment)
		if row, err = e.calc(row, 2); err != nil {
			return row, err
		}
	}

	return row, nil
}

// Converge runs ConvergeRow over every row. Rows that fail (zero price,
// iteration cap) are logged with their SKU and excluded; the batch is never
// aborted. Output preserves input order. With Workers > 1 rows are converged
// concurrently; each worker owns a private copy of its row.
func (e *Engine) Converge(rows []costs.PricingRow) []costs.PricingRow {
	type result struct {
		row costs.PricingRow
		err error
	}
	results := make([]result, len(rows))

	if e.cfg.Workers == 1 {
		for i, row := range rows {
			r, err := e.ConvergeRow(row)
			results[i] = result{row: r, err: err}
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < e.cfg.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					r, err := e.ConvergeRow(rows[i])
					results[i] = result{row: r, err: err}
				}
			}()
		}
		for i := range rows {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	converged := make([]costs.PricingRow, 0, len(rows))
	for _, res := range results {
		if res.err != nil {
			e.logger.Warn("Dropping SKU from batch", "sku", res.row.SKU, "error", res.err)
			continue
		}
		e.logger.Info("SKU converged",
			"sku", res.row.SKU,
			"special_price", res.row.SpecialPrice,
			"ebitda_percent", res.row.EbitdaPercent,
		)
		converged = append(converged, res.row)
	}

	return converged
}
