package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/coinsniper/coinsniper/internal/api"
	"github.com/coinsniper/coinsniper/internal/config"
	"github.com/coinsniper/coinsniper/internal/database"
	"github.com/coinsniper/coinsniper/internal/engine"
	"github.com/coinsniper/coinsniper/internal/exchange"
	"github.com/coinsniper/coinsniper/internal/ledger"
	"github.com/coinsniper/coinsniper/internal/market"
	"github.com/coinsniper/coinsniper/internal/stats"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Market data: HTTP provider behind a Redis price cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	provider := market.NewCachedProvider(
		market.NewHTTPProvider(cfg.Market.BaseURL),
		rdb,
		cfg.Redis.PriceTTL,
	)

	// Order execution
	orders, err := exchange.NewClient(cfg.Exchange.Name, provider, cfg.Exchange.PaperBalance)
	if err != nil {
		log.Fatalf("Failed to create exchange client: %v", err)
	}
	log.Printf("Exchange: %s", cfg.Exchange.Name)

	// Statistics sinks: Kafka stream + Postgres history
	kafkaSink := stats.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaSink.Close()
	sink := stats.NewMultiSink(kafkaSink, stats.NewStoreSink(db))

	// Engine
	book := ledger.New()
	eng := engine.New(engine.Config{
		Criteria:               cfg.Strategy.Criteria(),
		PollInterval:           cfg.Strategy.PollInterval,
		SellDwell:              cfg.Strategy.SellDwell,
		MaxConcurrentPositions: cfg.Strategy.MaxConcurrentPositions,
	}, provider, orders, book, sink, db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go eng.Run(ctx)

	// Candidate scans on a cron schedule
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Strategy.ScanSchedule, func() {
		if err := eng.ScanOnce(ctx); err != nil {
			log.Printf("Candidate scan failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule candidate scan: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("Candidate scan schedule: %s", cfg.Strategy.ScanSchedule)

	// HTTP API
	handler := api.NewHandler(db, eng)
	router := api.SetupRoutes(handler)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Shutdown complete")
}
