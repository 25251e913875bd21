package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"

	"github.com/hairpro/repricer/server/config"
	"github.com/hairpro/repricer/server/internal/handler"
	"github.com/hairpro/repricer/server/internal/repository"
	"github.com/hairpro/repricer/server/internal/router"
	"github.com/hairpro/repricer/server/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(clickhouse.Open(cfg.ClickHouseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	migrateFlag := flag.Bool("migrate", false, "Run database migrations and exit")
	flag.Parse()

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("Failed to get sql.DB: %v", err)
		}
		if err := goose.SetDialect("clickhouse"); err != nil {
			log.Fatalf("Goose: failed to set dialect: %v", err)
		}
		log.Println("Running database migrations...")
		if err := goose.Up(sqlDB, "internal/migrations"); err != nil {
			log.Fatalf("Goose migration failed: %v", err)
		}
	}

	priceRepo := repository.NewGormPriceRepository(db)
	priceService := service.NewPricesService(priceRepo)
	priceHandler := handler.NewPriceHandler(priceService)

	routerConfig := &router.Config{
		PriceHandler: priceHandler,
	}

	router := router.NewRouter(routerConfig)

	router.Run(fmt.Sprintf(":%s", cfg.ServerPort))
}
