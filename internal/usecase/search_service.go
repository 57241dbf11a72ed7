package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/comparaprecios/backend/internal/domain"
)

// Package-level compiled regex patterns for cache key normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL           time.Duration
	RelevanceFloor     int
	EnableDebugLogging bool
}

// SearchService orchestrates a product search: validate the query, check the
// result cache, fan out to all retailers, then filter and rank.
type SearchService struct {
	cache              domain.CacheRepository
	aggregator         *Aggregator
	pipeline           *Pipeline
	cacheTTL           time.Duration
	enableDebugLogging bool
}

// NewSearchService creates a search service over the given adapters.
func NewSearchService(
	cache domain.CacheRepository,
	adapters []domain.SourceAdapter,
	config SearchServiceConfig,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &SearchService{
		cache:              cache,
		aggregator:         NewAggregator(adapters, config.EnableDebugLogging),
		pipeline:           NewPipeline(config.RelevanceFloor),
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Search runs the full pipeline for one query. Leading/trailing whitespace is
// insignificant; an empty query is rejected before any fetch is dispatched.
// Retailer failures never fail the request; worst case is an empty result.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	cacheKey := s.generateCacheKey(query)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		if s.enableDebugLogging {
			log.Printf("[SEARCH] cache hit for %q", query)
		}
		return cached, nil
	}

	merged := s.aggregator.FetchAll(ctx, query)
	result := s.pipeline.Run(query, merged)

	log.Printf("[SEARCH] %q returned %d relevant products", query, len(result.Items))

	if err := s.cache.Set(ctx, cacheKey, &result, s.cacheTTL); err != nil {
		log.Printf("[SEARCH] failed to cache result for %q: %v", query, err)
	}

	return &result, nil
}

// generateCacheKey creates a normalized cache key from the query.
// Format: "search:{normalized query}"
func (s *SearchService) generateCacheKey(query string) string {
	normalized := strings.ToLower(query)
	normalized = nonAlphanumericRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpacesRegex.ReplaceAllString(normalized, " ")
	return fmt.Sprintf("search:%s", strings.TrimSpace(normalized))
}

// getFromCache retrieves a previously computed search result.
func (s *SearchService) getFromCache(ctx context.Context, key string) (*domain.SearchResult, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	result, ok := value.(*domain.SearchResult)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return result, nil
}
