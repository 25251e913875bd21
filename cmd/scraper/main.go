package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hairpro/repricer/configs"
	"github.com/hairpro/repricer/internal/drivers/beleza"
	"github.com/hairpro/repricer/internal/scraper"
)

func main() {
	appConfig := configs.AppLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Kafka writer for scraped listings
	listingWriter := &kafka.Writer{
		Addr:         kafka.TCP(appConfig.KafkaListings.Broker),
		Topic:        appConfig.KafkaListings.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Compression:  kafka.Zstd,
	}
	defer listingWriter.Close()

	scrapers := []scraper.Scraper{
		beleza.NewBelezaScraper(listingWriter, logger, &appConfig.Scraper),
	}

	logger.Info("Starting scrapers",
		"listing_topic", appConfig.KafkaListings.Topic,
		"product_urls", len(appConfig.Scraper.ProductURLs),
	)

	err := scraper.RunWithGracefulShutdown(logger, func(ctx context.Context, wg *sync.WaitGroup) {
		for _, s := range scrapers {
			wg.Add(1)
			go func(s scraper.Scraper) {
				defer wg.Done()
				logger.Info("Starting scraper", "name", s.Name())
				if err := s.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Error("Scraper failed", "name", s.Name(), "error", err)
				}
			}(s)
		}
	})
	if err != nil {
		logger.Error("Scrapers stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("All scrapers stopped")
}
