package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"order-management-service/internal/api"
	"order-management-service/internal/config"
	"order-management-service/internal/repository"
	"order-management-service/internal/service"
	"order-management-service/migrations"
)

func connectDB(dsn, dbname string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("✅ Connected to DB %s", dbname)
				return db, nil
			}
		}
		log.Printf("❌ Retry %d: Failed to connect to DB %s: %v", i+1, dbname, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s after retries: %v", dbname, err)
}

func main() {
	cfg := config.Load()

	db, err := connectDB(cfg.DSN(), cfg.DBName)
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrateAll(db, 3); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}
	if cfg.SeedData {
		if err := migrations.SeedProducts(db); err != nil {
			log.Fatalf("Failed to seed products: %v", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	var publisher service.EventPublisher
	if cfg.KafkaBrokers != "" {
		publisher = service.NewKafkaPublisher(config.NewKafkaWriter(cfg.KafkaBrokers, "order-topic"))
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txDB := repository.NewDB(db)

	orderService := service.NewOrderService(txDB, productRepo, orderRepo, publisher)
	productService := service.NewProductService(productRepo, rdb)

	handler := api.NewHandler(orderService, productService, txDB, nil, cfg.Development())

	e := echo.New()
	e.Validator = api.NewRequestValidator()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     40,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	handler.Register(e)

	if err := productService.PreWarmCache(context.Background()); err != nil {
		log.Printf("⚠️  Cache pre-warm failed: %v", err)
	}

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
