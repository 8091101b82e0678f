package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cashledger-api/internal/config"
	domainRepo "github.com/sangkips/cashledger-api/internal/domain/repository"
	"github.com/sangkips/cashledger-api/internal/presentation/http/handler"
	"github.com/sangkips/cashledger-api/internal/presentation/http/middleware"
	"github.com/sangkips/cashledger-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Collection *handler.CollectionHandler
	Report     *handler.ReportHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireTenant())

		// Per-tenant rate limiter
		rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		// Retried postings must not move the ledger twice
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}))

		registerCollectionRoutes(protected, h)
	}

	return router
}

func registerCollectionRoutes(rg *gin.RouterGroup, h *Handlers) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Collection.RegisterSale)
	}

	collections := rg.Group("/cash-collections")
	{
		collections.POST("", h.Collection.Start)
		collections.GET("", h.Report.List)
		collections.GET("/summary", h.Report.Summary)
		collections.GET("/pending", middleware.RequireRole("manager"), h.Report.Pending)
		collections.GET("/:id", h.Report.Get)
		collections.POST("/:id/sales", h.Collection.PostCashSale)
		collections.POST("/:id/expenses", h.Collection.PostExpense)
		collections.POST("/:id/submit", h.Collection.Submit)
		collections.POST("/:id/approve", middleware.RequireRole("manager"), h.Collection.Approve)
	}
}
