package costs

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/reconcile"
)

func testJoiner() *Joiner {
	return NewJoiner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func comparison(sku, suggested string) reconcile.SkuComparison {
	return reconcile.SkuComparison{
		SKU:            sku,
		OwnPrice:       decimal.RequireFromString(suggested),
		SuggestedPrice: decimal.RequireFromString(suggested),
	}
}

func TestJoinParsesCommaDecimals(t *testing.T) {
	records := map[string]CostRecord{
		"A": {SKU: "A", UnitCost: "12,34", Freight: "1,5", InputCost: "0,25", Status: StatusActive},
	}

	rows := testJoiner().Join([]reconcile.SkuComparison{comparison("A", "49.90")}, records)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.UnitCost.String() != "12.34" {
		t.Errorf("Expected unit cost 12.34, got %s", row.UnitCost)
	}
	if row.Freight.String() != "1.5" {
		t.Errorf("Expected freight 1.5, got %s", row.Freight)
	}
	if row.InputCost.String() != "0.25" {
		t.Errorf("Expected input cost 0.25, got %s", row.InputCost)
	}
	if row.SpecialPrice.String() != "49.9" {
		t.Errorf("Expected special price seeded from suggested price, got %s", row.SpecialPrice)
	}
}

func TestJoinDropsSKUsWithoutCostRecord(t *testing.T) {
	records := map[string]CostRecord{
		"A": {SKU: "A", UnitCost: "1", Freight: "1", InputCost: "1", Status: StatusActive},
	}
	cmps := []reconcile.SkuComparison{comparison("A", "10"), comparison("B", "20")}

	rows := testJoiner().Join(cmps, records)
	if len(rows) != 1 || rows[0].SKU != "A" {
		t.Errorf("Expected only SKU A to survive, got %+v", rows)
	}
}

func TestJoinDropsInactiveSKUs(t *testing.T) {
	records := map[string]CostRecord{
		"A": {SKU: "A", UnitCost: "1", Freight: "1", InputCost: "1", Status: StatusInactive},
		"B": {SKU: "B", UnitCost: "1", Freight: "1", InputCost: "1", Status: StatusActive},
	}
	cmps := []reconcile.SkuComparison{comparison("A", "10"), comparison("B", "20")}

	rows := testJoiner().Join(cmps, records)
	if len(rows) != 1 || rows[0].SKU != "B" {
		t.Errorf("Expected inactive SKU A dropped, got %+v", rows)
	}
}

func TestJoinSkipsUnparsableCostCells(t *testing.T) {
	tests := []struct {
		name     string
		unitCost string
	}{
		{"Garbage", "abc"},
		{"Empty", ""},
		{"None literal", "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := map[string]CostRecord{
				"A": {SKU: "A", UnitCost: tt.unitCost, Freight: "1", InputCost: "1", Status: StatusActive},
				"B": {SKU: "B", UnitCost: "2", Freight: "1", InputCost: "1", Status: StatusActive},
			}
			cmps := []reconcile.SkuComparison{comparison("A", "10"), comparison("B", "20")}

			rows := testJoiner().Join(cmps, records)
			if len(rows) != 1 || rows[0].SKU != "B" {
				t.Errorf("Expected row A skipped, got %+v", rows)
			}
		})
	}
}

func TestJoinPreservesComparisonOrder(t *testing.T) {
	records := map[string]CostRecord{
		"A": {SKU: "A", UnitCost: "1", Freight: "1", InputCost: "1", Status: StatusActive},
		"B": {SKU: "B", UnitCost: "1", Freight: "1", InputCost: "1", Status: StatusActive},
		"C": {SKU: "C", UnitCost: "1", Freight: "1", InputCost: "1", Status: StatusActive},
	}
	cmps := []reconcile.SkuComparison{comparison("C", "1"), comparison("A", "2"), comparison("B", "3")}

	rows := testJoiner().Join(cmps, records)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"C", "A", "B"} {
		if rows[i].SKU != want {
			t.Errorf("Expected row %d to be %s, got %s", i, want, rows[i].SKU)
		}
	}
}
