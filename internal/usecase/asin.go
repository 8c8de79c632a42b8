package usecase

import (
	"regexp"
	"strings"

	"github.com/recomp/act-service/internal/domain"
)

var (
	// asinPattern is the strict shape of an Amazon product code
	asinPattern = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)

	// productPathPattern extracts an ASIN from a product-page URL path
	productPathPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product)/([A-Za-z0-9]{10})(?:[/?]|$)`)
)

// ResolveASIN extracts a normalized product identifier from a record or, in
// order of preference, from the record's returned URL or the current page
// URL. Consumed raw fields are stripped from the record so they never leak
// into serialized output. Absence is not an error: an empty string means no
// identifier could be resolved.
func ResolveASIN(record *domain.ProductRecord, pageURL string) string {
	var asin string

	if record != nil {
		if asinPattern.MatchString(record.RawASIN) {
			asin = strings.ToUpper(record.RawASIN)
		} else if record.RawURL != "" {
			asin = asinFromURL(record.RawURL)
		}
		record.RawASIN = ""
		record.RawURL = ""
	}

	if asin == "" && pageURL != "" {
		asin = asinFromURL(pageURL)
	}

	return asin
}

// asinFromURL pulls an identifier out of a /dp/ or /gp/product/ path segment.
func asinFromURL(u string) string {
	m := productPathPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
