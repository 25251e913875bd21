package reconcile

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hairpro/repricer/internal/listing"
)

var testDate = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func testReconciler() *Reconciler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReconciler("HAIRPRO", decimal.RequireFromString("0.10"), logger)
}

func row(sku, price, seller string) listing.Row {
	return listing.Row{
		SKU:        sku,
		Brand:      "Wella",
		Name:       "Shampoo 250ml",
		Price:      decimal.RequireFromString(price),
		SellerName: seller,
		Date:       testDate,
	}
}

func TestReconcileSelectsMinimumCompetitor(t *testing.T) {
	rows := []listing.Row{
		row("A", "8.0", "HAIRPRO"),
		row("A", "9.0", "LojaX"),
		row("A", "8.5", "LojaY"),
	}

	cmps := testReconciler().Reconcile(rows)
	if len(cmps) != 1 {
		t.Fatalf("Expected 1 comparison, got %d", len(cmps))
	}

	cmp := cmps[0]
	if !cmp.HasCompetitor {
		t.Fatal("Expected a competitor price")
	}
	if cmp.CompetitorPrice.String() != "8.5" {
		t.Errorf("Expected minimum competitor price 8.5, got %s", cmp.CompetitorPrice)
	}
	if cmp.SuggestedPrice.String() != "8.4" {
		t.Errorf("Expected suggested price 8.40, got %s", cmp.SuggestedPrice)
	}
	if cmp.DifferencePrice.String() != "0.4" {
		t.Errorf("Expected difference price 0.40, got %s", cmp.DifferencePrice)
	}
	// gain = round(8.40/8.0 - 1, 2) * 100 = 5
	if cmp.GainPercent.String() != "5" {
		t.Errorf("Expected gain 5%%, got %s", cmp.GainPercent)
	}
}

func TestReconcileNoCompetitorFallsBackToOwnPrice(t *testing.T) {
	rows := []listing.Row{
		row("A", "12.34", "HAIRPRO"),
	}

	cmps := testReconciler().Reconcile(rows)
	if len(cmps) != 1 {
		t.Fatalf("Expected 1 comparison, got %d", len(cmps))
	}
	cmp := cmps[0]
	if cmp.HasCompetitor {
		t.Error("Expected no competitor")
	}
	if !cmp.SuggestedPrice.Equal(cmp.OwnPrice) {
		t.Errorf("Expected suggested == own, got %s vs %s", cmp.SuggestedPrice, cmp.OwnPrice)
	}
	if !cmp.GainPercent.IsZero() {
		t.Errorf("Expected zero gain, got %s", cmp.GainPercent)
	}
}

func TestReconcilePricedAboveMarketKeepsOwnPrice(t *testing.T) {
	rows := []listing.Row{
		row("A", "10.0", "HAIRPRO"),
		row("A", "8.5", "LojaX"),
	}

	cmps := testReconciler().Reconcile(rows)
	cmp := cmps[0]
	if cmp.SuggestedPrice.String() != "10" {
		t.Errorf("Expected suggested price 10 when own >= competitor, got %s", cmp.SuggestedPrice)
	}
	// difference = 8.5 - 10.0 - 0.10 = -1.6
	if cmp.DifferencePrice.String() != "-1.6" {
		t.Errorf("Expected difference -1.6, got %s", cmp.DifferencePrice)
	}
}

func TestReconcileTieBrokenByFirstOccurrence(t *testing.T) {
	rows := []listing.Row{
		row("A", "5.0", "HAIRPRO"),
		row("A", "8.5", "LojaX"),
		row("A", "8.5", "LojaY"),
	}

	cmps := testReconciler().Reconcile(rows)
	if cmps[0].CompetitorPrice.String() != "8.5" {
		t.Errorf("Expected competitor price 8.5, got %s", cmps[0].CompetitorPrice)
	}
}

func TestReconcileGroupsBySKU(t *testing.T) {
	rows := []listing.Row{
		row("A", "10.0", "HAIRPRO"),
		row("B", "20.0", "HAIRPRO"),
		row("A", "30.0", "LojaX"),
		row("B", "15.0", "LojaX"),
	}

	cmps := testReconciler().Reconcile(rows)
	if len(cmps) != 2 {
		t.Fatalf("Expected 2 comparisons, got %d", len(cmps))
	}
	if cmps[0].SKU != "A" || cmps[1].SKU != "B" {
		t.Errorf("Expected input order A,B, got %s,%s", cmps[0].SKU, cmps[1].SKU)
	}
	// A: own 10 < competitor 30 -> undercut
	if cmps[0].SuggestedPrice.String() != "29.9" {
		t.Errorf("Expected A suggested 29.9, got %s", cmps[0].SuggestedPrice)
	}
	// B: own 20 >= competitor 15 -> keep own
	if cmps[1].SuggestedPrice.String() != "20" {
		t.Errorf("Expected B suggested 20, got %s", cmps[1].SuggestedPrice)
	}
}

func TestReconcileSkipsZeroOwnPrice(t *testing.T) {
	rows := []listing.Row{
		row("A", "0", "HAIRPRO"),
		row("A", "8.5", "LojaX"),
		row("B", "10.0", "HAIRPRO"),
	}

	cmps := testReconciler().Reconcile(rows)
	if len(cmps) != 1 {
		t.Fatalf("Expected zero-price SKU skipped, got %d comparisons", len(cmps))
	}
	if cmps[0].SKU != "B" {
		t.Errorf("Expected only SKU B, got %s", cmps[0].SKU)
	}
}

func TestReconcileIgnoresCompetitorOnlySKUs(t *testing.T) {
	rows := []listing.Row{
		row("A", "10.0", "HAIRPRO"),
		row("Z", "5.0", "LojaX"),
	}

	cmps := testReconciler().Reconcile(rows)
	if len(cmps) != 1 || cmps[0].SKU != "A" {
		t.Errorf("Expected only managed SKUs in output, got %+v", cmps)
	}
}
