package main

import (
	"fmt"
	"log"
	"os"

	"github.com/comparaprecios/backend/config"
	httpDelivery "github.com/comparaprecios/backend/internal/delivery/http"
	"github.com/comparaprecios/backend/internal/domain"
	"github.com/comparaprecios/backend/internal/infrastructure/cache"
	"github.com/comparaprecios/backend/internal/infrastructure/meli"
	"github.com/comparaprecios/backend/internal/infrastructure/retailer"
	"github.com/comparaprecios/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ComparaPrecios Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cfg.Cache.TTL)

	tokenStore := meli.NewFileTokenStore(cfg.Meli.TokenPath)
	authClient := meli.NewAuthClient(meli.AuthConfig{
		ClientID:     cfg.Meli.ClientID,
		ClientSecret: cfg.Meli.ClientSecret,
		RedirectURI:  cfg.Meli.RedirectURI,
	}, tokenStore)

	if authClient.Configured() {
		log.Printf("MercadoLibre OAuth configured (client: %s..., tokens at %s)",
			cfg.Meli.ClientID[:min(8, len(cfg.Meli.ClientID))], cfg.Meli.TokenPath)
	} else {
		log.Printf("MercadoLibre OAuth not configured; /ml endpoints will refuse requests")
	}

	retailerCfg := retailer.Config{
		UserAgent:  cfg.Retailers.UserAgent,
		Timeout:    cfg.Retailers.Timeout,
		MaxResults: cfg.Retailers.MaxResults,
	}

	// Colombian retailers are always on; international ones join only
	// when their credentials are present.
	adapters := []domain.SourceAdapter{
		retailer.NewMercadoLibre(retailerCfg),
		retailer.NewFalabella(retailerCfg),
		retailer.NewExito(retailerCfg),
		retailer.NewOlimpica(retailerCfg),
		retailer.NewAlkosto(retailerCfg),
		retailer.NewHomecenter(retailerCfg),
	}
	if cfg.BestBuy.APIKey != "" {
		adapters = append(adapters, retailer.NewBestBuy(cfg.BestBuy.APIKey, retailerCfg))
		log.Printf("Best Buy adapter enabled")
	}
	if cfg.Ebay.OAuthToken != "" {
		adapters = append(adapters, retailer.NewEbay(cfg.Ebay.OAuthToken, retailerCfg))
		log.Printf("eBay adapter enabled")
	}
	log.Printf("Registered %d retailer adapters", len(adapters))

	// Initialize usecase layer
	searchService := usecase.NewSearchService(
		memoryCache,
		adapters,
		usecase.SearchServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			RelevanceFloor:     cfg.Matching.RelevanceFloor,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: relevance_floor=%d, debug=%v",
		cfg.Matching.RelevanceFloor, cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, adapters, authClient)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
