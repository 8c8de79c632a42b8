package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/recomp/act-service/internal/domain"
)

// Batch caps: add-to-cart mode runs three extra steps per item, so it gets a
// smaller cap to stay inside the boundary layer's wall-clock timeout.
const (
	maxItemsSearch    = 3
	maxItemsAddToCart = 2

	maxErrorLength = 200
)

// GroceryService runs grocery batches: one sequential browsing session per
// item, with extraction, identifier resolution, and link derivation.
type GroceryService struct {
	agent domain.Agent
	links *LinkBuilder
}

// NewGroceryService creates a grocery service with dependencies.
func NewGroceryService(agent domain.Agent, links *LinkBuilder) *GroceryService {
	return &GroceryService{agent: agent, links: links}
}

// RunBatch processes an ordered item list against one store. Per-item
// failures never abort the batch; each input item yields exactly one result
// in input order. The only whole-batch errors are structural (empty input),
// capability absence, and context expiry.
func (s *GroceryService) RunBatch(ctx context.Context, req *domain.GroceryRequest) (*domain.BatchResult, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items array required", domain.ErrInvalidRequest)
	}
	if s.agent == nil {
		return nil, domain.ErrAgentUnavailable
	}

	store := domain.ValidStore(req.Store)

	maxItems := maxItemsSearch
	if req.AddToCart {
		maxItems = maxItemsAddToCart
	}
	items := req.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	batch := &domain.BatchResult{
		Results: make([]domain.ItemResult, 0, len(items)),
		Store:   store,
	}

	var asins []string
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			// The batch deadline is all-or-nothing: no partial results
			return nil, fmt.Errorf("%w: %v", domain.ErrBatchTimeout, err)
		}

		result := s.runItem(ctx, item, store, req.AddToCart, req.IncludeCartURLs)

		// An expiry mid-item surfaces as that item's error; the batch
		// deadline still wins over partial results
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBatchTimeout, err)
		}

		batch.Results = append(batch.Results, result)

		if result.Found {
			batch.FoundCount++
		}
		if result.AddedToCart {
			batch.AddedCount++
		}
		if result.ASIN != "" {
			asins = append(asins, result.ASIN)
		}
	}

	batch.ItemCount = len(batch.Results)
	if req.IncludeCartURLs {
		batch.CartURL = s.links.BatchCartURL(asins)
	}

	log.Printf("[GROCERY] batch done: store=%s items=%d found=%d added=%d",
		store, batch.ItemCount, batch.FoundCount, batch.AddedCount)

	return batch, nil
}

// runItem executes the full step sequence for one item. It never returns an
// error: every failure inside the sequence is converted into an ItemResult
// with found=false and a truncated message.
func (s *GroceryService) runItem(ctx context.Context, item string, store domain.Store, addToCart, needASIN bool) (result domain.ItemResult) {
	result = domain.ItemResult{
		SearchTerm: item,
		Source:     domain.StoreLabels[store],
	}

	defer func() {
		if r := recover(); r != nil {
			result.Found = false
			result.Product = nil
			result.Error = truncateError(fmt.Sprintf("panic: %v", r))
		}
	}()

	term := SimplifySearchTerm(item)

	session, err := s.agent.NewSession(ctx, s.links.SearchURL(term, store))
	if err != nil {
		result.Error = truncateError(err.Error())
		return result
	}
	defer session.Close()

	// Step 1: open the first matching product
	_, err = session.Act(ctx, fmt.Sprintf(
		"Click on the title/name link of the first product in the search results "+
			"that matches '%s'. This should navigate to the product detail page.", term))
	if err != nil {
		result.Error = truncateError(err.Error())
		return result
	}

	// Step 2: read product data in one structured response
	readInstruction := "Read the product name and price from this product page. " +
		`Return ONLY valid JSON: {"name": "product name", "price": "$X.XX"}`
	if needASIN {
		readInstruction = "Read the product name, price, and ASIN (the 10-character product " +
			"code, visible in the page URL after /dp/) from this product page. " +
			`Return ONLY valid JSON: {"name": "...", "price": "$X.XX", "asin": "..."}`
	}
	info, err := session.Act(ctx, readInstruction)
	if err != nil {
		result.Error = truncateError(err.Error())
		return result
	}

	pageURL, _ := session.PageURL(ctx)

	// Search-only mode degrades an unreadable product page to a minimal
	// record; in cart-URL mode the read must yield an identifier somewhere.
	record, extractErr := ExtractProduct(info, term, !needASIN)
	asin := ResolveASIN(record, pageURL)

	if needASIN && extractErr != nil {
		if asin == "" {
			// No identifier from any source means no actionable URL can be built
			result.Error = truncateError("no product identifier found")
			return result
		}
		// The page URL still carried the identifier, so the item is
		// actionable after all; fall back to the minimal record
		record = &domain.ProductRecord{Name: term, Price: "N/A", Available: true}
	}

	result.Found = true
	result.Product = record
	result.ASIN = asin
	if asin != "" {
		result.ProductURL = s.links.ProductURL(asin)
		if needASIN {
			result.AddToCartURL = s.links.AddToCartURL(asin)
		}
	}

	if addToCart {
		s.addToCart(ctx, session, &result)
	}

	return result
}

// addToCart runs the cart-click step. Requires a persisted login session;
// without one the step is skipped silently. A click failure keeps the
// already-extracted product data and records the cart error separately.
func (s *GroceryService) addToCart(ctx context.Context, session domain.AgentSession, result *domain.ItemResult) {
	if !s.agent.SessionAvailable() {
		log.Printf("[GROCERY] no persisted session, skipping add-to-cart for %q", result.SearchTerm)
		return
	}

	resp, err := session.Act(ctx,
		"Scroll until the 'Add to Cart' button is visible, then click it. If there "+
			"are multiple 'Add to Cart' buttons, click the main/primary one. If you see "+
			"'Add to Fresh Cart' or 'Add to Whole Foods Cart', click that instead.")
	if err != nil {
		result.CartError = truncateError(err.Error())
		return
	}

	result.AddedToCart = cartClickSucceeded(resp)
	if !result.AddedToCart {
		result.CartError = truncateError("add to cart not confirmed")
	}

	// Leave the page in a predictable state for the next item; a failure
	// here doesn't touch the result, the next item opens a fresh session.
	if _, err := session.Act(ctx, "Go back to the search results page."); err != nil {
		log.Printf("[GROCERY] return to results failed for %q: %v", result.SearchTerm, err)
	}
}

// cartClickSucceeded applies the loose success heuristic for a cart click:
// a structured confirmation counts, otherwise the response text must mention
// the cart without mentioning a failure.
func cartClickSucceeded(resp *domain.AgentResponse) bool {
	if resp == nil {
		return true
	}
	if len(resp.Parsed) > 0 {
		return true
	}
	text := strings.ToLower(resp.Text)
	if text == "" {
		return true
	}
	if strings.Contains(text, "added") || strings.Contains(text, "cart") {
		return true
	}
	return !strings.Contains(text, "error") && !strings.Contains(text, "fail")
}

// truncateError bounds per-item error text so one noisy failure cannot
// bloat the batch output. Cuts on a rune boundary so truncation never
// emits invalid UTF-8.
func truncateError(msg string) string {
	if len(msg) <= maxErrorLength {
		return msg
	}
	cut := maxErrorLength
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}
