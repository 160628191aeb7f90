// Package routes wires the HTTP surface. It builds the repositories
// and services once at startup and hands them to the handlers; there
// are no package-level service singletons.
package routes

import (
	"time"

	"adsettle/internal/config"
	"adsettle/internal/handlers"
	"adsettle/internal/middleware"
	"adsettle/internal/repositories"
	"adsettle/internal/repositories/cache"
	"adsettle/internal/services/ads"
	"adsettle/internal/services/auction"
	"adsettle/internal/services/channel"
	"adsettle/internal/services/events"
	"adsettle/internal/services/ledger"
	"adsettle/internal/services/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Services bundles the constructed engine services so the scheduler
// and the HTTP surface share one instance of each.
type Services struct {
	Ads        ads.Service
	Channels   channel.Service
	Auctions   auction.Service
	Settlement settlement.Service
	Ledger     ledger.Service
	Store      repositories.Store
}

// BuildServices constructs the engine service graph on top of one
// database handle and an optional cache.
func BuildServices(db *gorm.DB, cacheService *cache.CacheService) *Services {
	store := repositories.NewStore(db)
	emitter := events.NewLogEmitter()

	var balanceCache ledger.BalanceCache
	if cacheService != nil {
		balanceCache = cacheService
	}

	ledgerService := ledger.NewService(store, balanceCache, ledger.Config{
		WithdrawalMinimum: config.GetFloatEnv("WITHDRAWAL_MINIMUM", 50),
	}, emitter)

	return &Services{
		Ads: ads.NewService(store, ads.Config{
			MinCPCBid: config.GetFloatEnv("MIN_CPC_BID", 0.05),
			MinCPMBid: config.GetFloatEnv("MIN_CPM_BID", 0.50),
		}, emitter),
		Channels: channel.NewService(store, cacheService),
		Auctions: auction.NewService(store, auction.Config{
			ReachFactor: config.GetFloatEnv("REACH_FACTOR", 0.35),
		}, emitter),
		Settlement: settlement.NewService(store, balanceCache, settlement.Config{
			OwnerShare:     config.GetFloatEnv("OWNER_REVENUE_SHARE", 0.68),
			PlatformUserID: uint(config.GetIntEnv("PLATFORM_USER_ID", 1)),
		}, emitter),
		Ledger: ledgerService,
		Store:  store,
	}
}

// SetupRoutes registers all HTTP routes on the fiber app.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheService *cache.CacheService, svcs *Services) {
	adHandler := handlers.NewAdHandler(svcs.Ads)
	channelHandler := handlers.NewChannelHandler(svcs.Channels)
	performanceHandler := handlers.NewPerformanceHandler(svcs.Settlement)
	ledgerHandler := handlers.NewLedgerHandler(svcs.Ledger)
	adminHandler := handlers.NewAdminHandler(svcs.Auctions, svcs.Settlement, svcs.Ledger, svcs.Store.JobRuns())
	healthHandler := handlers.NewHealthHandler(db, cacheService)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	submitLimiter := limiter.New(limiter.Config{
		Max:        config.GetIntEnv("SUBMIT_RATE_LIMIT", 30),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	api.Post("/ads", submitLimiter, adHandler.SubmitAd)
	api.Get("/ads", adHandler.ListAds)
	api.Get("/ads/:id", adHandler.GetAd)
	api.Put("/ads/:id/status", adHandler.SetAdStatus)

	api.Post("/channels", channelHandler.RegisterChannel)
	api.Get("/channels/:id", channelHandler.GetChannel)
	api.Post("/channels/:id/deactivate", channelHandler.DeactivateChannel)

	api.Post("/performance", performanceHandler.RecordPerformance)

	api.Get("/balance/:userID", ledgerHandler.GetBalance)
	api.Post("/withdrawals", submitLimiter, ledgerHandler.RequestWithdrawal)
	api.Get("/withdrawals/:userID", ledgerHandler.ListWithdrawals)

	admin := api.Group("/admin", middleware.AdminAuth())
	admin.Post("/auctions/run", adminHandler.RunAuctionCycle)
	admin.Post("/settlements/run", adminHandler.RunSettlement)
	admin.Post("/withdrawals/:id/pay", adminHandler.MarkWithdrawalPaid)
	admin.Post("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)
	admin.Get("/jobs", adminHandler.ListJobRuns)
}
