package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/recomp/act-service/internal/domain"
)

const usdaSearchPage = "https://fdc.nal.usda.gov/food-search"

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// NutritionServiceConfig holds configuration for the nutrition service
type NutritionServiceConfig struct {
	CacheTTL time.Duration
}

// NutritionService looks up nutrition facts through the browsing agent,
// caching successful lookups and substituting the fallback provider whenever
// the capability is absent or the lookup fails. Total: every request yields
// a well-formed record.
type NutritionService struct {
	agent    domain.Agent
	cache    domain.CacheRepository
	fallback *FallbackProvider
	cacheTTL time.Duration
}

// NewNutritionService creates a nutrition service with dependencies.
// agent may be nil, in which case every lookup runs in fallback mode.
func NewNutritionService(
	agent domain.Agent,
	cache domain.CacheRepository,
	config NutritionServiceConfig,
) *NutritionService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // 30 days
	}

	return &NutritionService{
		agent:    agent,
		cache:    cache,
		fallback: NewFallbackProvider(),
		cacheTTL: cacheTTL,
	}
}

// Lookup resolves nutrition facts for a food name.
// Flow: check cache -> drive agent through USDA FoodData Central -> cache ->
// return; fallback provider on capability absence or any failure.
func (s *NutritionService) Lookup(ctx context.Context, food string) (*domain.NutritionRecord, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return nil, fmt.Errorf("%w: food name required", domain.ErrInvalidRequest)
	}

	cacheKey := s.cacheKey(food)
	if cached := s.getFromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	if s.agent == nil {
		return s.fallback.Lookup(food), nil
	}

	record, err := s.lookupViaAgent(ctx, food)
	if err != nil {
		log.Printf("[NUTRITION] agent lookup failed for %q: %v", food, err)
		fb := s.fallback.Lookup(food)
		if fb.Note == "" {
			fb.Note = fmt.Sprintf("USDA lookup unavailable (%s). Using stored values.", truncateError(err.Error()))
		}
		return fb, nil
	}

	if err := s.setInCache(ctx, cacheKey, record); err != nil {
		log.Printf("[NUTRITION] cache write failed: %v", err)
	}

	return record, nil
}

// lookupViaAgent runs the three-step USDA FoodData Central sequence.
func (s *NutritionService) lookupViaAgent(ctx context.Context, food string) (*domain.NutritionRecord, error) {
	session, err := s.agent.NewSession(ctx, usdaSearchPage)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if _, err := session.Act(ctx, fmt.Sprintf(
		"Type '%s' into the search box and click the search button", food)); err != nil {
		return nil, err
	}

	if _, err := session.Act(ctx, fmt.Sprintf(
		"Click on the first search result that best matches '%s'", food)); err != nil {
		return nil, err
	}

	resp, err := session.Act(ctx,
		"Read the nutrition facts on this page. Extract: calories, total fat, "+
			"saturated fat, cholesterol, sodium, total carbohydrates, dietary fiber, "+
			"sugars, protein, vitamin D, calcium, iron, and potassium per 100g serving. "+
			"Return as JSON with numeric values.")
	if err != nil {
		return nil, err
	}

	nutrition, err := ExtractNutrition(resp)
	if err != nil {
		return nil, err
	}

	return &domain.NutritionRecord{
		Food:      food,
		Source:    domain.NutritionSource,
		Nutrition: nutrition,
		Found:     true,
	}, nil
}

// cacheKey normalizes a food name into a stable cache key.
func (s *NutritionService) cacheKey(food string) string {
	normalized := strings.ToLower(food)
	normalized = nonAlphanumericRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpacesRegex.ReplaceAllString(normalized, " ")
	return "nutrition:" + strings.TrimSpace(normalized)
}

// getFromCache retrieves a nutrition record from cache; nil on miss.
func (s *NutritionService) getFromCache(ctx context.Context, key string) *domain.NutritionRecord {
	if s.cache == nil {
		return nil
	}
	record, err := s.cache.Get(ctx, key)
	if err != nil || record == nil || record.Food == "" {
		return nil
	}
	return record
}

func (s *NutritionService) setInCache(ctx context.Context, key string, record *domain.NutritionRecord) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, record, s.cacheTTL)
}
