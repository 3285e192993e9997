package config

import (
	"fmt"
	"os"
)

// Config is read once at startup from the environment.
type Config struct {
	Port         string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPass       string
	DBName       string
	RedisAddr    string
	KafkaBrokers string
	SeedData     bool
	Env          string
}

func Load() Config {
	return Config{
		Port:         getEnv("PORT", "3000"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBUser:       getEnv("DB_USER", "root"),
		DBPass:       getEnv("DB_PASS", ""),
		DBName:       getEnv("DB_NAME", "ecommerce"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		SeedData:     os.Getenv("SEED_DATA") == "true",
		Env:          getEnv("ENV", "development"),
	}
}

// DSN builds the MySQL connection string. parseTime is required so that
// created_at/updated_at scan into time.Time.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func (c Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
