package ebitda

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/costs"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConfig() Config {
	return Config{
		CommissionRate: dec("0.15"),
		AdminRate:      dec("0.05"),
		ReverseRate:    dec("0.003"),
		FloorPercent:   dec("4.0"),
		Increment:      dec("0.10"),
	}
}

func testEngine(cfg Config) *Engine {
	return NewEngine(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func pricingRow(sku, price, unitCost, freight, inputCost string) costs.PricingRow {
	return costs.PricingRow{
		SKU:          sku,
		SpecialPrice: dec(price),
		UnitCost:     dec(unitCost),
		Freight:      dec(freight),
		InputCost:    dec(inputCost),
	}
}

func TestCalcRowFormula(t *testing.T) {
	cfg := testConfig()
	cfg.CommissionRate = dec("0.22")
	engine := testEngine(cfg)

	row, err := engine.CalcRow(pricingRow("BR001", "10.0", "2.0", "1.0", "1.0"))
	if err != nil {
		t.Fatalf("CalcRow failed: %v", err)
	}

	// commission = round(10 * 0.22, 2) = 2.2
	// admin      = round(10 * 0.05, 2) = 0.5
	// reverse    = round(10 * 0.003, 2) = 0.03
	// ebitda     = 10 - 2 - 1 - 1 - 2.2 - 0.5 - 0.03 = 3.27
	// ebitda %   = round(3.27 / 10, 3) * 100 = 32.7
	if !row.Commission.Equal(dec("2.2")) {
		t.Errorf("Expected commission 2.2, got %s", row.Commission)
	}
	if !row.AdminFee.Equal(dec("0.5")) {
		t.Errorf("Expected admin fee 0.5, got %s", row.AdminFee)
	}
	if !row.ReverseFee.Equal(dec("0.03")) {
		t.Errorf("Expected reverse fee 0.03, got %s", row.ReverseFee)
	}
	if !row.EbitdaValue.Equal(dec("3.27")) {
		t.Errorf("Expected EBITDA value 3.27, got %s", row.EbitdaValue)
	}
	if !row.EbitdaPercent.Equal(dec("32.7")) {
		t.Errorf("Expected EBITDA 32.7%%, got %s", row.EbitdaPercent)
	}
}

func TestConvergeRowAboveFloorIsTerminal(t *testing.T) {
	engine := testEngine(testConfig())

	row, err := engine.ConvergeRow(pricingRow("BR001", "10.0", "2.0", "1.0", "1.0"))
	if err != nil {
		t.Fatalf("ConvergeRow failed: %v", err)
	}
	if !row.SpecialPrice.Equal(dec("10.0")) {
		t.Errorf("Expected price untouched at 10.0, got %s", row.SpecialPrice)
	}
}

func TestConvergeRowRaisesPriceToFloor(t *testing.T) {
	engine := testEngine(testConfig())

	row, err := engine.ConvergeRow(pricingRow("BR001", "2.0", "2.0", "1.0", "1.0"))
	if err != nil {
		t.Fatalf("ConvergeRow failed: %v", err)
	}

	// 33 increments of 0.10: at 5.30 the fees are 0.80 + 0.27 + 0.02,
	// EBITDA = 0.21 and round(0.21/5.30, 2) * 100 = 4.0, meeting the floor.
	if !row.SpecialPrice.Equal(dec("5.30")) {
		t.Errorf("Expected converged price 5.30, got %s", row.SpecialPrice)
	}
	if !row.EbitdaPercent.Equal(dec("4.0")) {
		t.Errorf("Expected EBITDA exactly 4.0%%, got %s", row.EbitdaPercent)
	}
}

func TestConvergeRowIsMonotonicAndIdempotent(t *testing.T) {
	engine := testEngine(testConfig())

	start := pricingRow("BR001", "2.0", "2.0", "1.0", "1.0")
	once, err := engine.ConvergeRow(start)
	if err != nil {
		t.Fatalf("ConvergeRow failed: %v", err)
	}
	if once.SpecialPrice.LessThan(start.SpecialPrice) {
		t.Errorf("Price decreased: %s -> %s", start.SpecialPrice, once.SpecialPrice)
	}

	twice, err := engine.ConvergeRow(once)
	if err != nil {
		t.Fatalf("ConvergeRow failed on converged row: %v", err)
	}
	if !twice.SpecialPrice.Equal(once.SpecialPrice) {
		t.Errorf("Converged row is not a fixed point: %s -> %s", once.SpecialPrice, twice.SpecialPrice)
	}
	if !twice.EbitdaPercent.GreaterThanOrEqual(dec("4.0")) {
		t.Errorf("Floor lost on re-run: %s", twice.EbitdaPercent)
	}
}

func TestConvergeRowZeroPrice(t *testing.T) {
	engine := testEngine(testConfig())

	_, err := engine.ConvergeRow(pricingRow("BR001", "0", "2.0", "1.0", "1.0"))
	var zero *ZeroPriceError
	if !errors.As(err, &zero) {
		t.Fatalf("Expected ZeroPriceError, got %v", err)
	}
	if zero.SKU != "BR001" {
		t.Errorf("Expected offending SKU BR001, got %s", zero.SKU)
	}
}

func TestConvergeRowIterationCap(t *testing.T) {
	cfg := testConfig()
	cfg.Increment = decimal.Zero // floor unreachable, loop would never end
	cfg.MaxIterations = 10
	engine := testEngine(cfg)

	_, err := engine.ConvergeRow(pricingRow("BR001", "2.0", "2.0", "1.0", "1.0"))
	var limit *ConvergenceLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("Expected ConvergenceLimitError, got %v", err)
	}
	if limit.Iterations != 10 {
		t.Errorf("Expected cap at 10 iterations, got %d", limit.Iterations)
	}
}

func TestConvergeDropsFailedRowsOnly(t *testing.T) {
	engine := testEngine(testConfig())

	rows := []costs.PricingRow{
		pricingRow("GOOD", "10.0", "2.0", "1.0", "1.0"),
		pricingRow("ZERO", "0", "2.0", "1.0", "1.0"),
		pricingRow("ALSO", "2.0", "2.0", "1.0", "1.0"),
	}

	converged := engine.Converge(rows)
	if len(converged) != 2 {
		t.Fatalf("Expected 2 surviving rows, got %d", len(converged))
	}
	if converged[0].SKU != "GOOD" || converged[1].SKU != "ALSO" {
		t.Errorf("Expected GOOD,ALSO in order, got %s,%s", converged[0].SKU, converged[1].SKU)
	}
}

func TestConvergeParallelMatchesSerial(t *testing.T) {
	rows := []costs.PricingRow{
		pricingRow("A", "2.0", "2.0", "1.0", "1.0"),
		pricingRow("B", "10.0", "2.0", "1.0", "1.0"),
		pricingRow("C", "3.0", "2.5", "0.5", "0.5"),
		pricingRow("D", "7.5", "1.0", "1.0", "1.0"),
	}

	serial := testEngine(testConfig()).Converge(rows)

	cfg := testConfig()
	cfg.Workers = 4
	parallel := testEngine(cfg).Converge(rows)

	if len(serial) != len(parallel) {
		t.Fatalf("Worker pool changed row count: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i].SKU != parallel[i].SKU || !serial[i].SpecialPrice.Equal(parallel[i].SpecialPrice) {
			t.Errorf("Row %d differs: serial %s=%s parallel %s=%s",
				i, serial[i].SKU, serial[i].SpecialPrice, parallel[i].SKU, parallel[i].SpecialPrice)
		}
	}
}
