package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/recomp/act-service/internal/domain"
)

func sampleRecord(food string, calories float64) *domain.NutritionRecord {
	return &domain.NutritionRecord{
		Food:      food,
		Source:    domain.NutritionSource,
		Nutrition: map[string]float64{"calories": calories},
		Found:     true,
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	tests := []struct {
		name   string
		key    string
		record *domain.NutritionRecord
		ttl    time.Duration
		expire bool
	}{
		{
			name:   "store and retrieve record",
			key:    "nutrition:apple",
			record: sampleRecord("apple", 52),
			ttl:    1 * time.Minute,
		},
		{
			name:   "store record with note",
			key:    "nutrition:salmon",
			record: &domain.NutritionRecord{Food: "salmon", Source: domain.NutritionSource, Found: true, Note: "per 100g"},
			ttl:    1 * time.Minute,
		},
		{
			name:   "store with short TTL",
			key:    "nutrition:expires",
			record: sampleRecord("expires", 1),
			ttl:    1 * time.Millisecond,
			expire: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.record, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if tt.expire {
				time.Sleep(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				if err != domain.ErrCacheMiss {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Food != tt.record.Food {
				t.Errorf("Food = %q, want %q", got.Food, tt.record.Food)
			}
			if got.Source != tt.record.Source {
				t.Errorf("Source = %q, want %q", got.Source, tt.record.Source)
			}
			if got.Note != tt.record.Note {
				t.Errorf("Note = %q, want %q", got.Note, tt.record.Note)
			}
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()

	_, err := cache.Get(context.Background(), "nutrition:never-stored")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_CopiesOnSetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	original := sampleRecord("banana", 89)
	if err := cache.Set(ctx, "nutrition:banana", original, 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Mutating the record after Set must not touch the stored copy
	original.Nutrition["calories"] = 0
	original.Food = "mutated"

	got, err := cache.Get(ctx, "nutrition:banana")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Food != "banana" {
		t.Errorf("Food = %q, caller mutation leaked into the cache", got.Food)
	}
	if got.Nutrition["calories"] != 89 {
		t.Errorf("calories = %v, caller mutation leaked into the cache", got.Nutrition["calories"])
	}

	// Mutating a retrieved record must not touch the stored copy either
	got.Nutrition["calories"] = -1

	again, err := cache.Get(ctx, "nutrition:banana")
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if again.Nutrition["calories"] != 89 {
		t.Errorf("calories = %v, retrieved record aliases the cache", again.Nutrition["calories"])
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	key := "nutrition:delete-me"
	if err := cache.Set(ctx, key, sampleRecord("delete-me", 10), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	key := "nutrition:exists"

	exists, err := cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent key")
	}

	if err := cache.Set(ctx, key, sampleRecord("exists", 1), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, err = cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}

	shortKey := "nutrition:short-ttl"
	if err := cache.Set(ctx, shortKey, sampleRecord("short", 1), 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	exists, err = cache.Exists(ctx, shortKey)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("nutrition:food-%d", i)
		if err := cache.Set(ctx, key, sampleRecord(key, float64(i)), 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	if err := cache.Delete(ctx, "nutrition:food-0"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if size := cache.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4 after delete", size)
	}

	cache.Clear()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
	if _, err := cache.Get(ctx, "nutrition:food-1"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after clear error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := fmt.Sprintf("nutrition:food-%d", id)
			if err := cache.Set(ctx, key, sampleRecord(key, float64(id)), 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
