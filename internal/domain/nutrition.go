package domain

// NutritionRecord holds per-100g nutrient values for one food lookup.
type NutritionRecord struct {
	Food      string             `json:"food"`
	Source    string             `json:"source"`
	Nutrition map[string]float64 `json:"nutrition"`
	Found     bool               `json:"found"`
	DemoMode  bool               `json:"demoMode,omitempty"`
	Note      string             `json:"note,omitempty"`
}

// Clone returns a deep copy, so cached records cannot be mutated through
// aliased Nutrition maps.
func (r *NutritionRecord) Clone() *NutritionRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Nutrition != nil {
		cp.Nutrition = make(map[string]float64, len(r.Nutrition))
		for k, v := range r.Nutrition {
			cp.Nutrition[k] = v
		}
	}
	return &cp
}

// NutritionRequest is a nutrition lookup request from the boundary layer.
type NutritionRequest struct {
	Food string `json:"food" binding:"required"`
}

// NutritionSource labels where nutrition values came from.
const NutritionSource = "USDA FoodData Central"
