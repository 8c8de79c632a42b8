package domain

// Store identifies which Amazon storefront a grocery search runs against.
type Store string

const (
	StoreFresh      Store = "fresh"
	StoreWholeFoods Store = "wholefoods"
	StoreAmazon     Store = "amazon"
)

// StoreLabels maps a store to its human-readable source label.
var StoreLabels = map[Store]string{
	StoreFresh:      "Amazon Fresh",
	StoreWholeFoods: "Whole Foods",
	StoreAmazon:     "Amazon.com",
}

// ValidStore maps an arbitrary store string to a known store,
// defaulting to Amazon Fresh for anything unrecognized.
func ValidStore(s string) Store {
	switch Store(s) {
	case StoreFresh, StoreWholeFoods, StoreAmazon:
		return Store(s)
	}
	return StoreFresh
}

// ProductRecord is the validated product data extracted from one agent read.
// RawASIN and RawURL are transport-only: the identifier resolver consumes
// them and strips them so they never appear in serialized output.
type ProductRecord struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Available bool   `json:"available"`

	RawASIN string `json:"-"`
	RawURL  string `json:"-"`
}

// ItemResult is the unit of batch output: exactly one per input item.
type ItemResult struct {
	SearchTerm   string         `json:"searchTerm"`
	Found        bool           `json:"found"`
	Product      *ProductRecord `json:"product,omitempty"`
	ASIN         string         `json:"asin,omitempty"`
	ProductURL   string         `json:"productUrl,omitempty"`
	AddToCartURL string         `json:"addToCartUrl,omitempty"`
	AddedToCart  bool           `json:"addedToCart"`
	CartError    string         `json:"cartError,omitempty"`
	Error        string         `json:"error,omitempty"`
	Source       string         `json:"source,omitempty"`
}

// BatchResult aggregates per-item results in input order.
type BatchResult struct {
	Results    []ItemResult `json:"results"`
	ItemCount  int          `json:"itemCount"`
	FoundCount int          `json:"foundCount"`
	AddedCount int          `json:"addedCount"`
	Store      Store        `json:"store"`
	CartURL    string       `json:"cartUrl,omitempty"`
}

// GroceryRequest is a grocery batch request from the boundary layer.
type GroceryRequest struct {
	Items           []string `json:"items" binding:"required"`
	Store           string   `json:"store"`
	AddToCart       bool     `json:"addToCart"`
	IncludeCartURLs bool     `json:"includeCartUrls"`
}
