package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	gormclickhouse "gorm.io/driver/clickhouse"
	"gorm.io/gorm"

	"github.com/hairpro/repricer/configs"
	"github.com/hairpro/repricer/internal/connector"
	"github.com/hairpro/repricer/internal/costs"
	"github.com/hairpro/repricer/internal/ebitda"
	"github.com/hairpro/repricer/internal/ledger"
	"github.com/hairpro/repricer/internal/listing"
	"github.com/hairpro/repricer/internal/pricer"
	"github.com/hairpro/repricer/internal/reconcile"
	"github.com/hairpro/repricer/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	appConfig := configs.AppLoad()

	store, err := storage.NewClickHouseStorage(appConfig.DBDSN)
	if err != nil {
		logger.Error("Failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	db, err := gorm.Open(gormclickhouse.Open(appConfig.DBDSN), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to open cost ledger DB", "error", err)
		os.Exit(1)
	}
	costLedger := ledger.NewGormLedger(db)

	integratorLog := logrus.New()
	conn, err := connector.New(appConfig.Connector, integratorLog)
	if err != nil {
		logger.Error("Failed to build integrator connector", "error", err)
		os.Exit(1)
	}

	pipeline := pricer.NewPipeline(
		listing.NormalizerConfig{MarketplaceSeller: appConfig.Seller.MarketplaceSeller},
		reconcile.NewReconciler(
			appConfig.Seller.OwnSeller,
			decimal.NewFromFloat(appConfig.Seller.UndercutMargin),
			logger,
		),
		costs.NewJoiner(logger),
		ebitda.NewEngine(ebitda.Config{
			CommissionRate: decimal.NewFromFloat(appConfig.Pricing.CommissionRate),
			AdminRate:      decimal.NewFromFloat(appConfig.Pricing.AdminRate),
			ReverseRate:    decimal.NewFromFloat(appConfig.Pricing.ReverseRate),
			FloorPercent:   decimal.NewFromFloat(appConfig.Pricing.FloorPercent),
			Increment:      decimal.NewFromFloat(appConfig.Pricing.Increment),
			MaxIterations:  appConfig.Pricing.MaxIterations,
			Workers:        appConfig.Pricing.Workers,
		}, logger),
		costLedger,
		store,
		conn,
		logger,
	)

	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{appConfig.KafkaListings.Broker},
		Topic:          appConfig.KafkaListings.Topic,
		GroupID:        appConfig.KafkaListings.GroupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // Important: commits are handled manually after a run
	})
	defer kafkaReader.Close()

	svc := pricer.NewConsumer(
		kafkaReader,
		pipeline,
		logger,
		pricer.Config{
			BatchSize:    appConfig.Pricer.BatchSize,
			BatchTimeout: time.Duration(appConfig.Pricer.BatchTimeoutSeconds) * time.Second,
		},
	)

	// Run with Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Pricer started successfully", "integrator", conn.Name())

	if err := svc.Start(ctx); err != nil {
		logger.Error("Pricer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Pricer shutdown complete")
}
