package listing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testDate = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func raw(sku, price, seller string) RawListing {
	return RawListing{
		SKU:        sku,
		Brand:      "Wella",
		Category:   "cabelos",
		Name:       "Shampoo 250ml",
		Price:      price,
		SellerName: seller,
	}
}

func TestNormalizeDropsDuplicates(t *testing.T) {
	raws := []RawListing{
		raw("BR001", "49.90", "HAIRPRO"),
		raw("BR001", "49.90", "HAIRPRO"),
		raw("BR001", "47.50", "OutraLoja"),
	}

	rows, err := Normalize(raws, NormalizerConfig{}, testDate)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after dedup, got %d", len(rows))
	}
	if !rows[0].Price.Equal(decimal.RequireFromString("49.90")) || rows[0].SellerName != "HAIRPRO" {
		t.Errorf("Expected first occurrence kept, got %+v", rows[0])
	}
}

func TestNormalizeDropsMarketplaceSelfListing(t *testing.T) {
	raws := []RawListing{
		raw("BR001", "49.90", "HAIRPRO"),
		raw("BR001", "45.00", "Beleza na Web"),
		raw("BR001", "47.50", "OutraLoja"),
	}

	rows, err := Normalize(raws, NormalizerConfig{MarketplaceSeller: "Beleza na Web"}, testDate)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	for _, row := range rows {
		if row.SellerName == "Beleza na Web" {
			t.Errorf("Marketplace self-listing should be dropped, got %+v", row)
		}
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(rows))
	}
}

func TestNormalizeAttachesDate(t *testing.T) {
	rows, err := Normalize([]RawListing{raw("BR001", "10.00", "HAIRPRO")}, NormalizerConfig{}, testDate)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !rows[0].Date.Equal(testDate) {
		t.Errorf("Expected date %v, got %v", testDate, rows[0].Date)
	}
}

func TestNormalizeInvalidPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
	}{
		{"Not a number", "abc"},
		{"Empty", ""},
		{"Negative", "-1.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]RawListing{raw("BR001", tt.price, "HAIRPRO")}, NormalizerConfig{}, testDate)
			if err == nil {
				t.Fatal("Expected error for invalid price")
			}
			var invalid *InvalidListingError
			if !errors.As(err, &invalid) {
				t.Errorf("Expected InvalidListingError, got %T", err)
			}
		})
	}
}

func TestNormalizeEmptyInputIsFatal(t *testing.T) {
	_, err := Normalize(nil, NormalizerConfig{}, testDate)
	if !errors.Is(err, ErrNoListings) {
		t.Errorf("Expected ErrNoListings, got %v", err)
	}
}

func TestNormalizeZeroPriceIsValid(t *testing.T) {
	rows, err := Normalize([]RawListing{raw("BR001", "0", "HAIRPRO")}, NormalizerConfig{}, testDate)
	if err != nil {
		t.Fatalf("Zero price should normalize, got %v", err)
	}
	if !rows[0].Price.IsZero() {
		t.Errorf("Expected zero price, got %v", rows[0].Price)
	}
}
