package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recomp/act-service/internal/domain"
)

// fallbackNutrition holds per-100g values for common foods, used whenever
// the live agent capability is unavailable or fails.
var fallbackNutrition = map[string]map[string]float64{
	"chicken breast": {"calories": 165, "protein": 31, "carbs": 0, "fat": 3.6, "fiber": 0, "sugar": 0, "sodium": 74, "cholesterol": 85, "saturated_fat": 1, "vitamin_d": 0.1, "calcium": 15, "iron": 1, "potassium": 256},
	"brown rice":     {"calories": 123, "protein": 2.7, "carbs": 26, "fat": 1, "fiber": 1.6, "sugar": 0.4, "sodium": 4, "cholesterol": 0, "saturated_fat": 0.2, "vitamin_d": 0, "calcium": 3, "iron": 0.6, "potassium": 86},
	"salmon":         {"calories": 208, "protein": 20, "carbs": 0, "fat": 13, "fiber": 0, "sugar": 0, "sodium": 59, "cholesterol": 55, "saturated_fat": 3.1, "vitamin_d": 11, "calcium": 9, "iron": 0.3, "potassium": 363},
	"broccoli":       {"calories": 34, "protein": 2.8, "carbs": 7, "fat": 0.4, "fiber": 2.6, "sugar": 1.7, "sodium": 33, "cholesterol": 0, "saturated_fat": 0, "vitamin_d": 0, "calcium": 47, "iron": 0.7, "potassium": 316},
	"sweet potato":   {"calories": 86, "protein": 1.6, "carbs": 20, "fat": 0.1, "fiber": 3, "sugar": 4.2, "sodium": 55, "cholesterol": 0, "saturated_fat": 0, "vitamin_d": 0, "calcium": 30, "iron": 0.6, "potassium": 337},
	"egg":            {"calories": 155, "protein": 13, "carbs": 1.1, "fat": 11, "fiber": 0, "sugar": 1.1, "sodium": 124, "cholesterol": 373, "saturated_fat": 3.3, "vitamin_d": 2, "calcium": 56, "iron": 1.8, "potassium": 126},
	"oats":           {"calories": 389, "protein": 17, "carbs": 66, "fat": 6.9, "fiber": 11, "sugar": 0, "sodium": 2, "cholesterol": 0, "saturated_fat": 1.2, "vitamin_d": 0, "calcium": 54, "iron": 4.7, "potassium": 429},
	"banana":         {"calories": 89, "protein": 1.1, "carbs": 23, "fat": 0.3, "fiber": 2.6, "sugar": 12, "sodium": 1, "cholesterol": 0, "saturated_fat": 0.1, "vitamin_d": 0, "calcium": 5, "iron": 0.3, "potassium": 358},
	"avocado":        {"calories": 160, "protein": 2, "carbs": 9, "fat": 15, "fiber": 7, "sugar": 0.7, "sodium": 7, "cholesterol": 0, "saturated_fat": 2.1, "vitamin_d": 0, "calcium": 12, "iron": 0.6, "potassium": 485},
	"spinach":        {"calories": 23, "protein": 2.9, "carbs": 3.6, "fat": 0.4, "fiber": 2.2, "sugar": 0.4, "sodium": 79, "cholesterol": 0, "saturated_fat": 0.1, "vitamin_d": 0, "calcium": 99, "iron": 2.7, "potassium": 558},
	"greek yogurt":   {"calories": 59, "protein": 10, "carbs": 3.6, "fat": 0.7, "fiber": 0, "sugar": 3.2, "sodium": 36, "cholesterol": 5, "saturated_fat": 0.3, "vitamin_d": 0, "calcium": 110, "iron": 0.1, "potassium": 141},
	"almonds":        {"calories": 579, "protein": 21, "carbs": 22, "fat": 50, "fiber": 13, "sugar": 4.4, "sodium": 1, "cholesterol": 0, "saturated_fat": 3.8, "vitamin_d": 0, "calcium": 269, "iron": 3.7, "potassium": 733},
	"quinoa":         {"calories": 120, "protein": 4.4, "carbs": 21, "fat": 1.9, "fiber": 2.8, "sugar": 0.9, "sodium": 7, "cholesterol": 0, "saturated_fat": 0.2, "vitamin_d": 0, "calcium": 17, "iron": 1.5, "potassium": 172},
	"turkey":         {"calories": 135, "protein": 30, "carbs": 0, "fat": 1, "fiber": 0, "sugar": 0, "sodium": 60, "cholesterol": 65, "saturated_fat": 0.3, "vitamin_d": 0.3, "calcium": 13, "iron": 0.8, "potassium": 298},
	"beef":           {"calories": 254, "protein": 17, "carbs": 0, "fat": 20, "fiber": 0, "sugar": 0, "sodium": 66, "cholesterol": 78, "saturated_fat": 7.7, "vitamin_d": 0.1, "calcium": 12, "iron": 2.3, "potassium": 270},
	"tofu":           {"calories": 76, "protein": 8, "carbs": 1.9, "fat": 4.8, "fiber": 0.3, "sugar": 0.6, "sodium": 7, "cholesterol": 0, "saturated_fat": 0.7, "vitamin_d": 0, "calcium": 350, "iron": 5.4, "potassium": 121},
	"shrimp":         {"calories": 85, "protein": 20, "carbs": 0.2, "fat": 0.5, "fiber": 0, "sugar": 0, "sodium": 119, "cholesterol": 189, "saturated_fat": 0.1, "vitamin_d": 0, "calcium": 70, "iron": 0.5, "potassium": 182},
	"tuna":           {"calories": 132, "protein": 28, "carbs": 0, "fat": 1.3, "fiber": 0, "sugar": 0, "sodium": 47, "cholesterol": 49, "saturated_fat": 0.4, "vitamin_d": 1.7, "calcium": 4, "iron": 0.8, "potassium": 323},
	"rice":           {"calories": 130, "protein": 2.7, "carbs": 28, "fat": 0.3, "fiber": 0.4, "sugar": 0, "sodium": 1, "cholesterol": 0, "saturated_fat": 0.1, "vitamin_d": 0, "calcium": 10, "iron": 1.2, "potassium": 35},
	"pasta":          {"calories": 131, "protein": 5, "carbs": 25, "fat": 1.1, "fiber": 1.8, "sugar": 0.6, "sodium": 1, "cholesterol": 0, "saturated_fat": 0.2, "vitamin_d": 0, "calcium": 7, "iron": 1.3, "potassium": 44},
}

// genericEstimate is the last-resort record for foods missing from the table.
var genericEstimate = map[string]float64{
	"calories": 150, "protein": 10, "carbs": 15, "fat": 5,
	"fiber": 2, "sugar": 3, "sodium": 50, "cholesterol": 20,
	"saturated_fat": 1.5, "vitamin_d": 0, "calcium": 20,
	"iron": 1, "potassium": 150,
}

// FallbackProvider serves canned nutrition records when the automation
// capability is absent. Lookups are total: every query yields a record.
type FallbackProvider struct {
	table      map[string]map[string]float64
	sortedKeys []string
}

// NewFallbackProvider creates a provider over the built-in food table.
func NewFallbackProvider() *FallbackProvider {
	keys := make([]string, 0, len(fallbackNutrition))
	for k := range fallbackNutrition {
		keys = append(keys, k)
	}
	// Sorted so fuzzy matching is deterministic instead of map-order dependent
	sort.Strings(keys)

	return &FallbackProvider{table: fallbackNutrition, sortedKeys: keys}
}

// Lookup returns a nutrition record for the food: exact case-insensitive
// match first, then substring containment either way over sorted keys, then
// a generic estimate with an explanatory note.
func (p *FallbackProvider) Lookup(food string) *domain.NutritionRecord {
	normalized := strings.ToLower(strings.TrimSpace(food))

	if nutrition, ok := p.table[normalized]; ok {
		return p.record(food, nutrition, "")
	}

	if normalized != "" {
		for _, key := range p.sortedKeys {
			if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
				return p.record(food, p.table[key], "")
			}
		}
	}

	note := fmt.Sprintf("Estimated values for %q. Configure the browsing agent for a live USDA lookup.", food)
	return p.record(food, genericEstimate, note)
}

func (p *FallbackProvider) record(food string, nutrition map[string]float64, note string) *domain.NutritionRecord {
	return &domain.NutritionRecord{
		Food:      food,
		Source:    domain.NutritionSource,
		Nutrition: nutrition,
		Found:     true,
		DemoMode:  true,
		Note:      note,
	}
}
