package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cashledger-api/internal/application/service"
	"github.com/sangkips/cashledger-api/internal/config"
	"github.com/sangkips/cashledger-api/internal/infrastructure/database"
	"github.com/sangkips/cashledger-api/internal/infrastructure/repository"
	"github.com/sangkips/cashledger-api/internal/presentation/http/handler"
	"github.com/sangkips/cashledger-api/internal/presentation/http/routes"
	"github.com/sangkips/cashledger-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	collectionRepo := repository.NewCollectionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	collectionService := service.NewCollectionService(collectionRepo, saleRepo)
	reportService := service.NewReportService(collectionRepo, saleRepo, reportRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Collection: handler.NewCollectionHandler(collectionService),
		Report:     handler.NewReportHandler(reportService),
	}

	// Setup router
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Start server
	port := cfg.App.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	log.Printf("Starting %s on port %s (env: %s)", cfg.App.Name, port, cfg.App.Env)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
