// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// DBDSN is the ClickHouse connection string.
	DBDSN string

	// KafkaListings contains Kafka connection settings for scraped listings.
	KafkaListings KafkaConfig

	// Scraper contains settings for the marketplace page scraper.
	Scraper ScraperConfig

	// Seller identifies the managed seller and the marketplace self-listing.
	Seller SellerConfig

	// Pricing contains the EBITDA convergence parameters.
	Pricing PricingConfig

	// Pricer contains batching settings for the Kafka-to-pipeline consumer.
	Pricer PricerConfig

	// Connector contains marketplace integrator settings.
	Connector ConnectorConfig
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092").
	Broker string

	// Topic is the Kafka topic for scraped listings.
	Topic string

	// GroupID is the consumer group ID for the pricer.
	GroupID string
}

// ScraperConfig holds marketplace scraper settings.
type ScraperConfig struct {
	// ProductURLs is the list of marketplace product pages to scrape
	// (comma-separated in env).
	ProductURLs []string

	// ScheduleHour is the hour of day (0-23) to run the daily scrape.
	// Uses America/Sao_Paulo timezone. Default: 6.
	ScheduleHour int

	// RequestsPerSecond limits outgoing page fetches.
	RequestsPerSecond float64
}

// SellerConfig identifies the seller under management.
type SellerConfig struct {
	// OwnSeller is the seller name whose listings are ours (e.g., "HAIRPRO").
	OwnSeller string

	// MarketplaceSeller is the marketplace posing as a seller on its own
	// pages (e.g., "Beleza na Web"). Those rows are dropped.
	MarketplaceSeller string

	// UndercutMargin is the fixed amount subtracted from a competitor
	// price to produce the suggested price.
	UndercutMargin float64
}

// PricingConfig holds the EBITDA convergence parameters.
type PricingConfig struct {
	// CommissionRate, AdminRate and ReverseRate are fractions of price.
	CommissionRate float64
	AdminRate      float64
	ReverseRate    float64

	// FloorPercent is the minimum acceptable EBITDA percentage.
	FloorPercent float64

	// Increment is the currency amount added per convergence step.
	Increment float64

	// MaxIterations caps the convergence loop per row.
	MaxIterations int

	// Workers is the number of goroutines converging rows. 1 disables
	// parallelism.
	Workers int
}

// PricerConfig holds settings for batch processing.
type PricerConfig struct {
	// BatchSize is the maximum number of listings to accumulate before
	// running the pipeline.
	BatchSize int

	// BatchTimeoutSeconds is the maximum seconds to wait before running.
	BatchTimeoutSeconds int
}

// ConnectorConfig holds marketplace integrator settings.
type ConnectorConfig struct {
	// Integrator selects the price-push API: "PLUGG_TO" or "ANYMARKET".
	Integrator string

	// Marketplace is the marketplace the prices apply to (Anymarket
	// publishes one SKU to several marketplaces).
	Marketplace string

	// PluggTo OAuth credentials.
	PluggToBaseURL      string
	PluggToClientID     string
	PluggToClientSecret string
	PluggToUsername     string
	PluggToPassword     string

	// Anymarket token auth.
	AnymarketBaseURL string
	AnymarketToken   string
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("CLICKHOUSE_USER", "user")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "password")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "db")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// getScraperConfig loads marketplace scraper settings from environment.
func getScraperConfig() ScraperConfig {
	rawURLs := getEnv("PRODUCT_URLS", "")
	var urls []string
	for _, u := range strings.Split(rawURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	scheduleHour := getEnvInt("SCRAPE_SCHEDULE_HOUR", 6)
	if scheduleHour < 0 || scheduleHour > 23 {
		scheduleHour = 6
	}

	return ScraperConfig{
		ProductURLs:       urls,
		ScheduleHour:      scheduleHour,
		RequestsPerSecond: getEnvFloat("SCRAPE_REQUESTS_PER_SECOND", 1.0),
	}
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		DBDSN: getDatabaseDSN(),
		KafkaListings: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_LISTING_TOPIC", "repricer_listings"),
			GroupID: getEnv("KAFKA_LISTING_GROUP_ID", "repricer-pricer"),
		},
		Scraper: getScraperConfig(),
		Seller: SellerConfig{
			OwnSeller:         getEnv("OWN_SELLER", "HAIRPRO"),
			MarketplaceSeller: getEnv("MARKETPLACE_SELLER", "Beleza na Web"),
			UndercutMargin:    getEnvFloat("UNDERCUT_MARGIN", 0.10),
		},
		Pricing: PricingConfig{
			CommissionRate: getEnvFloat("COMMISSION_RATE", 0.15),
			AdminRate:      getEnvFloat("ADMIN_RATE", 0.05),
			ReverseRate:    getEnvFloat("REVERSE_RATE", 0.003),
			FloorPercent:   getEnvFloat("EBITDA_FLOOR_PERCENT", 4.0),
			Increment:      getEnvFloat("PRICE_INCREMENT", 0.10),
			MaxIterations:  getEnvInt("CONVERGE_MAX_ITERATIONS", 100000),
			Workers:        getEnvInt("CONVERGE_WORKERS", 1),
		},
		Pricer: PricerConfig{
			BatchSize:           getEnvInt("BATCH_SIZE", 500),
			BatchTimeoutSeconds: getEnvInt("BATCH_TIMEOUT_SECONDS", 30),
		},
		Connector: ConnectorConfig{
			Integrator:          getEnv("INTEGRATOR", "PLUGG_TO"),
			Marketplace:         getEnv("CONNECTOR_MARKETPLACE", "BELEZA_NA_WEB"),
			PluggToBaseURL:      getEnv("PLUGG_TO_BASE_URL", "https://api.plugg.to"),
			PluggToClientID:     getEnv("PLUGG_TO_CLIENT_ID", ""),
			PluggToClientSecret: getEnv("PLUGG_TO_CLIENT_SECRET", ""),
			PluggToUsername:     getEnv("PLUGG_TO_USERNAME", ""),
			PluggToPassword:     getEnv("PLUGG_TO_PASSWORD", ""),
			AnymarketBaseURL:    getEnv("ANYMARKET_BASE_URL", "https://api.anymarket.com.br"),
			AnymarketToken:      getEnv("ANYMARKET_TOKEN", ""),
		},
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
