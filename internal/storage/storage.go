// Package storage provides database storage implementations for listing and
// recommendation data.
package storage

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/hairpro/repricer/internal/storage/models"
)

// Storage defines the interface for persisting listing and recommendation
// data. Implementations must be safe for concurrent use.
type Storage interface {
	// CreateListings inserts a batch of scraped listings.
	CreateListings(ctx context.Context, listings []*models.Listing) error

	// CreateRecommendations inserts a batch of approved prices.
	CreateRecommendations(ctx context.Context, recs []*models.PriceRecommendation) error

	// Close releases database connection resources.
	Close() error
}

// clickhouseStorage implements Storage using the native ClickHouse driver.
// Uses batch inserts for high-throughput writes.
type clickhouseStorage struct {
	conn driver.Conn
}

// NewClickHouseStorage creates a new ClickHouse storage connection.
// It parses the DSN, opens a connection, and verifies connectivity with a ping.
// Returns an error if connection cannot be established within 5 seconds.
func NewClickHouseStorage(dsn string) (Storage, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &clickhouseStorage{conn: conn}, nil
}

// CreateListings inserts listings using ClickHouse batch insert.
// All listings in the batch share the same inserted_at timestamp.
func (s *clickhouseStorage) CreateListings(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO listing (
			sku, brand, name, price,
			seller_name, date, inserted_at
		)
	`)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, l := range listings {
		err := batch.Append(
			l.SKU,
			l.Brand,
			l.Name,
			l.Price,
			l.SellerName,
			l.Date,
			now,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// CreateRecommendations inserts approved prices using ClickHouse batch insert.
func (s *clickhouseStorage) CreateRecommendations(ctx context.Context, recs []*models.PriceRecommendation) error {
	if len(recs) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_recommendation (
			run_id, sku, own_price, competitor_price,
			special_price, ebitda_value, ebitda_percent, gain_percent,
			created_at
		)
	`)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, r := range recs {
		err := batch.Append(
			r.RunID,
			r.SKU,
			r.OwnPrice,
			r.CompetitorPrice,
			r.SpecialPrice,
			r.EbitdaValue,
			r.EbitdaPercent,
			r.GainPercent,
			now,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// Close closes the ClickHouse connection.
func (s *clickhouseStorage) Close() error {
	return s.conn.Close()
}
