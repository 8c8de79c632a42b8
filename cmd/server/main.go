package main

import (
	"fmt"
	"log"
	"os"

	"github.com/recomp/act-service/config"
	httpDelivery "github.com/recomp/act-service/internal/delivery/http"
	"github.com/recomp/act-service/internal/domain"
	"github.com/recomp/act-service/internal/infrastructure/cache"
	"github.com/recomp/act-service/internal/infrastructure/novaagent"
	"github.com/recomp/act-service/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Recomp Act Service v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// The browsing agent is optional: without a credential the nutrition
	// task runs from the fallback table and grocery reports unavailable.
	var agent domain.Agent
	provider, err := novaagent.New(novaagent.Config{
		OpenAIAPIKey: cfg.Agent.OpenAIAPIKey,
		Model:        cfg.Agent.Model,
		UserDataDir:  cfg.Agent.UserDataDir,
		Headless:     cfg.Agent.Headless,
		MaxSteps:     cfg.Agent.MaxSteps,
	})
	if err != nil {
		log.Printf("WARNING: %v - running in fallback mode", err)
	} else {
		agent = provider
		log.Printf("Agent configured: model=%s headless=%v session=%v",
			cfg.Agent.Model, cfg.Agent.Headless, provider.SessionAvailable())
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	links := usecase.NewLinkBuilder(cfg.Amazon.AssociateTag)
	groceryService := usecase.NewGroceryService(agent, links)
	nutritionService := usecase.NewNutritionService(agent, memoryCache, usecase.NutritionServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})

	handler := httpDelivery.NewHandler(
		groceryService,
		nutritionService,
		agent,
		cfg.Timeouts.Grocery,
		cfg.Timeouts.Nutrition,
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
