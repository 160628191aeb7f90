// Package main is the entry point for the settlement engine.
// It builds the engine once at startup and hands the same service
// instances to both the HTTP surface and the recurring jobs, so the
// timer path and the request path never mutate shared state through
// different stacks.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adsettle/internal/config"
	"adsettle/internal/repositories"
	"adsettle/internal/repositories/cache"
	"adsettle/internal/routes"
	"adsettle/internal/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	db, err := repositories.Connect()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	var cacheService *cache.CacheService
	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})
	cacheService = cache.NewCacheService(redisClient, config.GetDurationEnv("CACHE_TTL", time.Hour))
	if err := cacheService.HealthCheck(context.Background()); err != nil {
		log.Printf("redis unavailable, running without cache: %v", err)
		cacheService = nil
	}
	if cacheService != nil {
		defer cacheService.Close()
	}

	svcs := routes.BuildServices(db, cacheService)

	manager, err := workers.NewManager(svcs.Store.JobRuns())
	if err != nil {
		log.Fatalf("failed to create job scheduler: %v", err)
	}
	auctionJob := workers.NewAuctionJob(svcs.Auctions,
		config.GetDurationEnv("AUCTION_INTERVAL", 24*time.Hour))
	settlementJob := workers.NewSettlementJob(svcs.Settlement,
		config.GetDurationEnv("SETTLEMENT_INTERVAL", 24*time.Hour))
	if err := manager.Register(auctionJob); err != nil {
		log.Fatalf("failed to register auction job: %v", err)
	}
	if err := manager.Register(settlementJob); err != nil {
		log.Fatalf("failed to register settlement job: %v", err)
	}
	manager.Start()
	defer manager.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, db, cacheService, svcs)

	// Serve until interrupted or the listener fails; either way the
	// deferred teardown stops the scheduler before the database goes
	// away.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(":" + config.GetEnv("PORT", "3000"))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		log.Printf("server stopped: %v", err)
	case <-quit:
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}
}
