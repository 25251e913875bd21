package config

import (
	"fmt"
	"os"

	"log"

	"github.com/joho/godotenv"
)

type Config struct {
	ClickHouseDSN string
	ServerPort    string
	DebugMode     string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		getEnv("CLICKHOUSE_USER", "user"),
		getEnv("CLICKHOUSE_PASSWORD", "password"),
		getEnv("CLICKHOUSE_HOST", "localhost"),
		getEnv("CLICKHOUSE_TCP_PORT", "9000"),
		getEnv("CLICKHOUSE_DB", "db"),
	)

	return &Config{
		ClickHouseDSN: dsn,
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DebugMode:     getEnv("DEBUGMODE", "True"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
