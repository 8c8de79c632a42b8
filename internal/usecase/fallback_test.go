package usecase

import (
	"strings"
	"testing"
)

func TestFallbackProviderExactMatch(t *testing.T) {
	p := NewFallbackProvider()

	record := p.Lookup("salmon")

	if !record.Found {
		t.Error("expected found=true")
	}
	if !record.DemoMode {
		t.Error("fallback results are always demo mode")
	}
	if record.Nutrition["calories"] != 208 || record.Nutrition["protein"] != 20 {
		t.Errorf("unexpected salmon values: %v", record.Nutrition)
	}
	if record.Note != "" {
		t.Errorf("table hit should carry no note, got %q", record.Note)
	}
}

func TestFallbackProviderCaseInsensitive(t *testing.T) {
	p := NewFallbackProvider()

	record := p.Lookup("  Greek Yogurt ")
	if record.Nutrition["protein"] != 10 {
		t.Errorf("unexpected values: %v", record.Nutrition)
	}
}

func TestFallbackProviderFuzzyMatch(t *testing.T) {
	p := NewFallbackProvider()

	record := p.Lookup("grilled salmon fillet")

	if record.Nutrition["calories"] != 208 {
		t.Errorf("expected the salmon record via fuzzy match, got %v", record.Nutrition)
	}
}

func TestFallbackProviderFuzzyMatchDeterministic(t *testing.T) {
	p := NewFallbackProvider()

	// "rice" is contained in both "brown rice" and "rice"; sorted key order
	// makes "brown rice" the stable winner
	first := p.Lookup("rice bowl")
	for i := 0; i < 20; i++ {
		if got := p.Lookup("rice bowl"); got.Nutrition["calories"] != first.Nutrition["calories"] {
			t.Fatal("fuzzy match is not deterministic across lookups")
		}
	}
}

func TestFallbackProviderGenericEstimate(t *testing.T) {
	p := NewFallbackProvider()

	record := p.Lookup("xyzzy nonsense food")

	if !record.Found || !record.DemoMode {
		t.Errorf("generic estimate should be found+demo: %+v", record)
	}
	if record.Nutrition["calories"] != 150 {
		t.Errorf("expected generic estimate, got %v", record.Nutrition)
	}
	if !strings.Contains(record.Note, "xyzzy nonsense food") {
		t.Errorf("note should name the query, got %q", record.Note)
	}
}
