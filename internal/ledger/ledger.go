// Package ledger reads SKU cost data from the internal cost table. The
// table is maintained by the finance team; numeric columns arrive as raw
// strings and are parsed downstream.
package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/hairpro/repricer/internal/costs"
)

// skuCost maps the sku_cost table.
type skuCost struct {
	SKU       string `gorm:"column:sku"`
	UnitCost  string `gorm:"column:unit_cost"`
	Freight   string `gorm:"column:freight"`
	InputCost string `gorm:"column:input_cost"`
	Status    string `gorm:"column:status"`
}

func (skuCost) TableName() string { return "sku_cost" }

// Ledger fetches cost records for pricing.
type Ledger interface {
	// Costs returns the cost record for every requested SKU present in
	// the ledger, keyed by SKU. Missing SKUs are simply absent.
	Costs(ctx context.Context, skus []string) (map[string]costs.CostRecord, error)
}

type gormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a ledger backed by the given database.
func NewGormLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) Costs(ctx context.Context, skus []string) (map[string]costs.CostRecord, error) {
	if len(skus) == 0 {
		return map[string]costs.CostRecord{}, nil
	}

	var rows []skuCost
	err := l.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make(map[string]costs.CostRecord, len(rows))
	for _, row := range rows {
		records[row.SKU] = costs.CostRecord{
			SKU:       row.SKU,
			UnitCost:  row.UnitCost,
			Freight:   row.Freight,
			InputCost: row.InputCost,
			Status:    row.Status,
		}
	}
	return records, nil
}
