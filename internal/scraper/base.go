// Package scraper provides the shared plumbing for marketplace page
// scrapers: Kafka publishing and graceful shutdown.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

// Scraper is one marketplace source feeding the listing topic.
type Scraper interface {
	Run(ctx context.Context) error
	Name() string
}

// Writer is the subset of kafka.Writer the scrapers use. Tests substitute
// an in-memory implementation.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type BaseScraper struct {
	KafkaWriter Writer
	Logger      *slog.Logger
}

func NewBaseScraper(writer Writer, logger *slog.Logger) *BaseScraper {
	return &BaseScraper{
		KafkaWriter: writer,
		Logger:      logger,
	}
}

func (bc *BaseScraper) SendToKafka(ctx context.Context, message []byte) error {
	msg := kafka.Message{
		Value: message,
	}

	// Use context with timeout for graceful shutdown
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := bc.KafkaWriter.WriteMessages(writeCtx, msg)
	if err != nil {
		// Don't log error if context was cancelled (shutdown in progress)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

func RunWithGracefulShutdown(
	logger *slog.Logger,
	startWorkers func(ctx context.Context, wg *sync.WaitGroup),
) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Start workers
	var wg sync.WaitGroup
	startWorkers(ctx, &wg)

	logger.Info("All workers started")
	wg.Wait()

	return nil
}
