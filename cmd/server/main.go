package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dvkrepak/coingecko-crud/internal/api"
	"github.com/dvkrepak/coingecko-crud/internal/config"
	"github.com/dvkrepak/coingecko-crud/internal/db"
	"github.com/dvkrepak/coingecko-crud/internal/external"
	"github.com/dvkrepak/coingecko-crud/internal/market"
	"github.com/dvkrepak/coingecko-crud/internal/notifications"
	"github.com/dvkrepak/coingecko-crud/internal/repository"
	"github.com/dvkrepak/coingecko-crud/internal/scheduler"
	"github.com/dvkrepak/coingecko-crud/internal/service"
	"github.com/dvkrepak/coingecko-crud/internal/web"
)

const banner = `
╔══════════════════════════════════════╗
║       Crypto Tracker API v1.0        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}
	if err := db.EnsureSchema(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Schema bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	// Redis (coin directory cache)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			fmt.Printf("[CACHE] Redis not reachable at %s: %v (directory cache disabled until it recovers)\n",
				cfg.RedisAddr, err)
		} else {
			fmt.Printf("[CACHE] Connected to Redis at %s\n", cfg.RedisAddr)
		}
		cancel()
	}

	// Market data plumbing
	client := external.NewCoinGeckoClient(cfg.CoinGeckoAPIBase)
	directory := market.NewDirectory(rdb, client, cfg.RedisCacheTTL)
	resolver := market.NewResolver(directory)
	fetcher := market.NewFetcher(resolver, client)

	// Store and service
	repo := repository.NewCryptoRepo(pool)
	svc := service.NewCryptoService(repo, fetcher)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.ServiceName)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server + dashboard
	dashboard := web.NewDashboard(svc)
	srv := api.NewServer(pool, directory, svc, cfg.Port, cfg.CORSAllowOrigin, dashboard.AddRoutes)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Price refresh scheduler
	sched := scheduler.NewPriceScheduler(svc, notify, scheduler.PriceSchedulerConfig{
		Interval: cfg.UpdateInterval,
	})
	sched.Start()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
