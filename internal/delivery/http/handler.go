package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recomp/act-service/internal/domain"
	"github.com/recomp/act-service/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	grocery   *usecase.GroceryService
	nutrition *usecase.NutritionService
	agent     domain.Agent

	groceryTimeout   time.Duration
	nutritionTimeout time.Duration
}

// NewHandler creates a new HTTP handler. agent may be nil when the browsing
// capability is not configured.
func NewHandler(
	grocery *usecase.GroceryService,
	nutrition *usecase.NutritionService,
	agent domain.Agent,
	groceryTimeout, nutritionTimeout time.Duration,
) *Handler {
	return &Handler{
		grocery:          grocery,
		nutrition:        nutrition,
		agent:            agent,
		groceryTimeout:   groceryTimeout,
		nutritionTimeout: nutritionTimeout,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "recomp-act",
		"version": "1.0.0",
	})
}

// Status reports agent capability and session availability
func (h *Handler) Status(c *gin.Context) {
	agentConfigured := h.agent != nil
	sessionAvailable := agentConfigured && h.agent.SessionAvailable()

	c.JSON(http.StatusOK, gin.H{
		"agentConfigured":  agentConfigured,
		"sessionAvailable": sessionAvailable,
	})
}

// GrocerySearch runs a grocery batch: search, extract, optionally add to cart.
// The whole batch runs under one wall-clock deadline; per-item failures stay
// inside their item's result.
func (h *Handler) GrocerySearch(c *gin.Context) {
	var req domain.GroceryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Items array required", "results": []domain.ItemResult{}})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.groceryTimeout)
	defer cancel()

	batch, err := h.grocery.RunBatch(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "results": []domain.ItemResult{}})
		case errors.Is(err, domain.ErrAgentUnavailable):
			// No static fallback exists for arbitrary grocery products
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Browsing agent not configured. Set RECOMP_AGENT_OPENAI_API_KEY.",
				"results": []domain.ItemResult{},
			})
		case errors.Is(err, domain.ErrBatchTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out. Try again.", "results": []domain.ItemResult{}})
		default:
			log.Printf("[GROCERY] batch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Grocery automation failed", "results": []domain.ItemResult{}})
		}
		return
	}

	c.JSON(http.StatusOK, batch)
}

// NutritionLookup looks up nutrition facts for one food. Always answers with
// a well-formed record: fallback values substitute for a failed or absent
// agent capability.
func (h *Handler) NutritionLookup(c *gin.Context) {
	var req domain.NutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Food name required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.nutritionTimeout)
	defer cancel()

	record, err := h.nutrition.Lookup(ctx, req.Food)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Food name required"})
			return
		}
		log.Printf("[NUTRITION] lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Nutrition lookup failed"})
		return
	}

	c.JSON(http.StatusOK, record)
}
