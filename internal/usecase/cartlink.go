package usecase

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/recomp/act-service/internal/domain"
)

const (
	amazonBaseURL  = "https://www.amazon.com"
	cartAddPath    = "/gp/aws/cart/add.html"
	productPathFmt = "%s/dp/%s"
)

// LinkBuilder derives external Amazon URLs from search terms and resolved
// identifiers. Pure: every method is a function of its inputs plus the
// optional associate tag fixed at construction.
type LinkBuilder struct {
	associateTag string
}

// NewLinkBuilder creates a link builder. associateTag may be empty.
func NewLinkBuilder(associateTag string) *LinkBuilder {
	return &LinkBuilder{associateTag: associateTag}
}

// SearchURL builds a direct search-results URL for the given store,
// skipping storefront navigation.
func (b *LinkBuilder) SearchURL(query string, store domain.Store) string {
	params := url.Values{}
	params.Set("k", query)
	switch store {
	case domain.StoreFresh:
		params.Set("i", "amazonfresh")
	case domain.StoreWholeFoods:
		params.Set("i", "wholefoods")
	}
	return amazonBaseURL + "/s?" + params.Encode()
}

// ProductURL builds the canonical product-page URL for one identifier.
func (b *LinkBuilder) ProductURL(asin string) string {
	return fmt.Sprintf(productPathFmt, amazonBaseURL, asin)
}

// AddToCartURL builds a one-item cart-add URL with quantity 1.
func (b *LinkBuilder) AddToCartURL(asin string) string {
	return b.BatchCartURL([]string{asin})
}

// BatchCartURL builds one cart-add URL carrying every identifier as indexed
// ASIN.n/Quantity.n parameter pairs, preserving input order. An empty
// identifier list yields an empty string, not a URL with no items.
func (b *LinkBuilder) BatchCartURL(asins []string) string {
	if len(asins) == 0 {
		return ""
	}

	// Assembled by hand: url.Values.Encode sorts keys, which would scramble
	// the ASIN.1/ASIN.2/... ordering the cart form expects.
	var query strings.Builder
	for i, asin := range asins {
		if i > 0 {
			query.WriteByte('&')
		}
		n := strconv.Itoa(i + 1)
		query.WriteString("ASIN." + n + "=" + url.QueryEscape(asin))
		query.WriteString("&Quantity." + n + "=1")
	}
	if b.associateTag != "" {
		query.WriteString("&AssociateTag=" + url.QueryEscape(b.associateTag))
	}
	return amazonBaseURL + cartAddPath + "?" + query.String()
}
