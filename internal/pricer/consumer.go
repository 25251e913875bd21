package pricer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hairpro/repricer/internal/listing"
)

// Config holds consumer configuration parameters.
type Config struct {
	// BatchSize is the maximum number of listings to accumulate before
	// running the pipeline.
	BatchSize int

	// BatchTimeout is the maximum time to wait before running, even if the
	// batch isn't full.
	BatchTimeout time.Duration
}

// Reader is the subset of kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer accumulates scraped listings from Kafka and feeds them through
// the pipeline in batches. Offsets are committed only after a batch has been
// fully processed (at-least-once).
type Consumer struct {
	reader   Reader
	pipeline *Pipeline
	logger   *slog.Logger
	cfg      Config
}

// NewConsumer creates a Consumer with the provided dependencies.
func NewConsumer(reader Reader, pipeline *Pipeline, logger *slog.Logger, cfg Config) *Consumer {
	return &Consumer{
		reader:   reader,
		pipeline: pipeline,
		logger:   logger,
		cfg:      cfg,
	}
}

// Start runs the main consume loop. It blocks until context is cancelled.
// On shutdown, it attempts to process any remaining buffered listings.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting pricer loop", "batch_size", c.cfg.BatchSize)

	batchRaws := make([]listing.RawListing, 0, c.cfg.BatchSize)
	batchMsgs := make([]kafka.Message, 0, c.cfg.BatchSize)

	ticker := time.NewTicker(c.cfg.BatchTimeout)
	defer ticker.Stop()

	// flush runs the pipeline over accumulated listings and commits Kafka
	// offsets. Undecodable messages carry no listings but their offsets
	// still must be committed, or they are redelivered forever.
	flush := func() error {
		if len(batchMsgs) == 0 {
			return nil
		}

		// Retry transient failures; a batch rejected by validation is
		// poisoned and retrying cannot fix it, so it is dropped.
		for len(batchRaws) > 0 {
			_, err := c.pipeline.Run(ctx, batchRaws)
			if err == nil {
				break
			}

			var invalid *listing.InvalidListingError
			if errors.As(err, &invalid) || errors.Is(err, listing.ErrNoListings) {
				c.logger.Error("Dropping rejected batch", "count", len(batchRaws), "error", err)
				break
			}

			c.logger.Error("Pipeline run failed (retrying in 2s)", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
				continue
			}
		}

		// Commit Kafka offsets AFTER the run (at-least-once)
		if err := c.reader.CommitMessages(ctx, batchMsgs...); err != nil {
			c.logger.Warn("Failed to commit offsets", "error", err)
		}

		// Clear buffers while keeping allocated capacity
		batchRaws = batchRaws[:0]
		batchMsgs = batchMsgs[:0]
		ticker.Reset(c.cfg.BatchTimeout)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return flush() // Process remaining listings on shutdown

		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}

		default:
			// Fetch with short timeout to remain responsive to ticker/shutdown
			fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.BatchTimeout)
			m, err := c.reader.FetchMessage(fetchCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				if errors.Is(err, context.Canceled) {
					return flush()
				}
				c.logger.Error("Kafka fetch error", "error", err)
				time.Sleep(time.Second)
				continue
			}

			raw, err := c.parseMessage(m)
			if err != nil {
				c.logger.Warn("Skipping undecodable message", "error", err)
			} else {
				batchRaws = append(batchRaws, raw)
			}
			batchMsgs = append(batchMsgs, m)

			if len(batchMsgs) >= c.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// parseMessage deserializes a Kafka message into a raw listing.
func (c *Consumer) parseMessage(msg kafka.Message) (listing.RawListing, error) {
	var raw listing.RawListing
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return listing.RawListing{}, err
	}
	return raw, nil
}
