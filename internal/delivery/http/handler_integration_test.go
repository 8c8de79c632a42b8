package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recomp/act-service/config"
	"github.com/recomp/act-service/internal/domain"
	"github.com/recomp/act-service/internal/infrastructure/cache"
	"github.com/recomp/act-service/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// --- Mock implementations for testing with a scripted browsing agent ---

// mockSession replays scripted responses to Act calls in order.
type mockSession struct {
	responses []*domain.AgentResponse
	calls     int
	pageURL   string
}

func (s *mockSession) Act(_ context.Context, _ string) (*domain.AgentResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return &domain.AgentResponse{}, nil
}

func (s *mockSession) PageURL(_ context.Context) (string, error) {
	return s.pageURL, nil
}

func (s *mockSession) Close() error { return nil }

// mockAgent hands out one scripted session per item.
type mockAgent struct {
	sessions  []*mockSession
	next      int
	available bool
}

func (a *mockAgent) NewSession(_ context.Context, _ string) (domain.AgentSession, error) {
	if a.next < len(a.sessions) {
		s := a.sessions[a.next]
		a.next++
		return s, nil
	}
	return &mockSession{}, nil
}

func (a *mockAgent) SessionAvailable() bool { return a.available }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		RateLimit: config.RateLimitConfig{Grocery: 100, Nutrition: 100},
		Timeouts:  config.TimeoutConfig{Grocery: 5 * time.Second, Nutrition: 5 * time.Second},
	}
}

// setupTestRouter builds a router around the given agent; a nil agent
// exercises the fallback paths.
func setupTestRouter(agent domain.Agent) *gin.Engine {
	cfg := testConfig()

	links := usecase.NewLinkBuilder("")
	grocery := usecase.NewGroceryService(agent, links)
	nutrition := usecase.NewNutritionService(agent, cache.NewMemoryCache(), usecase.NutritionServiceConfig{})

	handler := NewHandler(grocery, nutrition, agent, cfg.Timeouts.Grocery, cfg.Timeouts.Nutrition)
	return SetupRouter(cfg, handler)
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(nil)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "recomp-act" {
			t.Errorf("service = %v, want recomp-act", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestStatusEndpoint(t *testing.T) {
	t.Run("agent not configured", func(t *testing.T) {
		router := setupTestRouter(nil)

		req, _ := http.NewRequest("GET", "/api/v1/act/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["agentConfigured"] != false {
			t.Errorf("agentConfigured = %v, want false", response["agentConfigured"])
		}
		if response["sessionAvailable"] != false {
			t.Errorf("sessionAvailable = %v, want false", response["sessionAvailable"])
		}
	})

	t.Run("agent configured with persisted session", func(t *testing.T) {
		router := setupTestRouter(&mockAgent{available: true})

		req, _ := http.NewRequest("GET", "/api/v1/act/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["agentConfigured"] != true {
			t.Errorf("agentConfigured = %v, want true", response["agentConfigured"])
		}
		if response["sessionAvailable"] != true {
			t.Errorf("sessionAvailable = %v, want true", response["sessionAvailable"])
		}
	})
}

func TestGroceryEndpoint(t *testing.T) {
	t.Run("returns results for valid request", func(t *testing.T) {
		agent := &mockAgent{sessions: []*mockSession{
			{responses: []*domain.AgentResponse{
				{Text: "clicked the first result"},
				{Parsed: map[string]interface{}{"name": "Whole Milk", "price": "$3.49"}},
			}},
		}}
		router := setupTestRouter(agent)

		payload := `{"items":["milk"],"store":"fresh"}`
		req, _ := http.NewRequest("POST", "/api/v1/act/grocery", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var batch domain.BatchResult
		if err := json.Unmarshal(w.Body.Bytes(), &batch); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if batch.ItemCount != 1 || len(batch.Results) != 1 {
			t.Fatalf("ItemCount = %d, Results = %d, want 1 each", batch.ItemCount, len(batch.Results))
		}
		if !batch.Results[0].Found {
			t.Errorf("Results[0].Found = false, want true")
		}
		if batch.Results[0].Product == nil || batch.Results[0].Product.Name != "Whole Milk" {
			t.Errorf("Results[0].Product = %+v, want Whole Milk", batch.Results[0].Product)
		}
	})

	t.Run("returns 400 for missing items", func(t *testing.T) {
		router := setupTestRouter(&mockAgent{})

		for _, payload := range []string{`{}`, `{"items":[]}`, `{invalid json}`} {
			req, _ := http.NewRequest("POST", "/api/v1/act/grocery", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("payload %s: Status = %d, want %d", payload, w.Code, http.StatusBadRequest)
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("payload %s: response is not JSON: %v", payload, err)
			}
			if response["error"] == nil {
				t.Errorf("payload %s: expected error field", payload)
			}
			if _, ok := response["results"].([]interface{}); !ok {
				t.Errorf("payload %s: expected empty results array, got %v", payload, response["results"])
			}
		}
	})

	t.Run("returns 503 without agent", func(t *testing.T) {
		router := setupTestRouter(nil)

		payload := `{"items":["milk"]}`
		req, _ := http.NewRequest("POST", "/api/v1/act/grocery", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		errMsg, _ := response["error"].(string)
		if !strings.Contains(errMsg, "not configured") {
			t.Errorf("error = %q, want to mention configuration", errMsg)
		}
	})

	t.Run("validates HTTP method", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, method := range []string{"GET", "PUT", "DELETE"} {
			req, _ := http.NewRequest(method, "/api/v1/act/grocery", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestNutritionEndpoint(t *testing.T) {
	t.Run("serves fallback values without agent", func(t *testing.T) {
		router := setupTestRouter(nil)

		payload := `{"food":"salmon"}`
		req, _ := http.NewRequest("POST", "/api/v1/act/nutrition", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var record domain.NutritionRecord
		if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if !record.Found {
			t.Errorf("Found = false, want true")
		}
		if !record.DemoMode {
			t.Errorf("DemoMode = false, want fallback record without agent")
		}
		if record.Nutrition["calories"] != 208 {
			t.Errorf("calories = %v, want 208", record.Nutrition["calories"])
		}
	})

	t.Run("serves live values through agent", func(t *testing.T) {
		agent := &mockAgent{sessions: []*mockSession{
			{responses: []*domain.AgentResponse{
				{Text: "typed and searched"},
				{Text: "opened the first result"},
				{Parsed: map[string]interface{}{"calories": 52.0, "protein": 0.3}},
			}},
		}}
		router := setupTestRouter(agent)

		payload := `{"food":"apple"}`
		req, _ := http.NewRequest("POST", "/api/v1/act/nutrition", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var record domain.NutritionRecord
		if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if record.DemoMode {
			t.Errorf("DemoMode = true, want live record")
		}
		if record.Source != domain.NutritionSource {
			t.Errorf("Source = %q, want %q", record.Source, domain.NutritionSource)
		}
	})

	t.Run("returns 400 for missing food", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, payload := range []string{`{}`, `{"food":""}`, `{invalid}`} {
			req, _ := http.NewRequest("POST", "/api/v1/act/nutrition", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("payload %s: Status = %d, want %d", payload, w.Code, http.StatusBadRequest)
			}
		}
	})
}

func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(nil)

	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}

func TestRecoveryIntegration(t *testing.T) {
	router := setupTestRouter(nil)
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestRateLimitIntegration(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Nutrition = 2

	links := usecase.NewLinkBuilder("")
	grocery := usecase.NewGroceryService(nil, links)
	nutrition := usecase.NewNutritionService(nil, cache.NewMemoryCache(), usecase.NutritionServiceConfig{})
	handler := NewHandler(grocery, nutrition, nil, cfg.Timeouts.Grocery, cfg.Timeouts.Nutrition)
	router := SetupRouter(cfg, handler)

	send := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/api/v1/act/nutrition", strings.NewReader(`{"food":"salmon"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send(); w.Code != http.StatusOK {
			t.Fatalf("request %d: Status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want %d after limit exhausted", w.Code, http.StatusTooManyRequests)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("429 response is not JSON: %v", err)
	}
	if response["error"] == nil {
		t.Errorf("expected error field in 429 response")
	}
}
