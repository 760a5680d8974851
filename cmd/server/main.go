package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nore-menu/api/internal/config"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/router"
	"github.com/nore-menu/api/internal/service"
	"github.com/nore-menu/api/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	// WebSocket hub for live order pushes
	hub := ws.NewHub()
	go hub.Run()

	aggregator := service.NewAggregationService(queries)
	reconciler := ws.NewReconciler(hub, queries)

	// Background jobs: nightly metric rollup plus the periodic full
	// snapshot that heals kitchen displays after dropped events.
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Cron(cfg.AggregationCron).Do(func() {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		written, err := aggregator.RunDailyAggregation(context.Background(), yesterday)
		if err != nil {
			log.Printf("ERROR: daily aggregation: %v", err)
			return
		}
		log.Printf("Daily aggregation wrote %d rows for %s", written, yesterday.Format("2006-01-02"))
	}); err != nil {
		log.Fatalf("Unable to schedule aggregation job: %v", err)
	}

	resyncEvery, err := time.ParseDuration(cfg.ResyncInterval)
	if err != nil {
		log.Fatalf("Invalid RESYNC_INTERVAL %q: %v", cfg.ResyncInterval, err)
	}
	if _, err := scheduler.Every(resyncEvery).Do(func() {
		if err := reconciler.RunOnce(context.Background()); err != nil {
			log.Printf("ERROR: order resync: %v", err)
		}
	}); err != nil {
		log.Fatalf("Unable to schedule resync job: %v", err)
	}

	scheduler.StartAsync()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(cfg, queries, pool, hub, aggregator),
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
