package main

import (
	"fmt"
	"log"
	"os"

	"github.com/greenbasket/backend/config"
	httpDelivery "github.com/greenbasket/backend/internal/delivery/http"
	"github.com/greenbasket/backend/internal/infrastructure/cache"
	"github.com/greenbasket/backend/internal/infrastructure/catalog"
	"github.com/greenbasket/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting GreenBasket Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Catalog: %s", cfg.Catalog.BaseURL)

	// Infrastructure
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.UserAgent, cfg.RateLimit.Catalog)
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Printf("Catalog client debug mode enabled")
	}

	// Usecase layer
	scoringService := usecase.NewScoringService()

	optimizerService := usecase.NewOptimizerService(usecase.OptimizerConfig{
		DPItemThreshold:    cfg.Optimizer.DPItemThreshold,
		EnableDebugLogging: cfg.Optimizer.Debug,
	})

	substitutionService := usecase.NewSubstitutionService(scoringService, usecase.SubstitutionConfig{
		MinScoreImprovement: cfg.Substitution.MinScoreImprovement,
		MaxPriceIncrease:    cfg.Substitution.MaxPriceIncrease,
		MaxResults:          cfg.Substitution.MaxResults,
		EnableDebugLogging:  cfg.Substitution.Debug,
	})

	listService := usecase.NewListService(scoringService, substitutionService, usecase.ListServiceConfig{
		EnableDebugLogging: cfg.Substitution.Debug,
	})

	log.Printf("Substitution: minImprovement=%.2f maxPriceIncrease=%.0f%% maxResults=%d",
		cfg.Substitution.MinScoreImprovement,
		cfg.Substitution.MaxPriceIncrease*100,
		cfg.Substitution.MaxResults)

	// HTTP delivery
	handler := httpDelivery.NewHandler(
		scoringService,
		optimizerService,
		substitutionService,
		listService,
		catalogClient,
		memoryCache,
	)

	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
