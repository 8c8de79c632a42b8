package usecase

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/recomp/act-service/internal/domain"
)

// Agent output arrives through terminals and process pipes, so it can carry
// ANSI escape sequences, spinner carriage returns, and stray control bytes.
var (
	ansiEscapePattern   = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	spinnerLinePattern  = regexp.MustCompile(`\r[^\n]*`)
	controlCharsPattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
)

// SanitizeResponseText strips terminal noise from raw agent output before
// any JSON extraction is attempted.
func SanitizeResponseText(raw string) string {
	out := ansiEscapePattern.ReplaceAllString(raw, "")
	out = spinnerLinePattern.ReplaceAllString(out, "")
	out = controlCharsPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// ExtractJSONObject finds the last complete JSON object embedded in free
// text. It scans backward from the last '}' tracking nested-brace depth to
// find the matching '{'; if the braces never balance, it reports failure
// rather than guessing at a truncation point.
func ExtractJSONObject(text string) (string, bool) {
	lastBrace := strings.LastIndexByte(text, '}')
	if lastBrace < 0 {
		return "", false
	}

	depth := 0
	start := -1
	for i := lastBrace; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			depth--
			if depth == 0 {
				start = i
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", false
	}

	span := text[start : lastBrace+1]
	if !gjson.Valid(span) || !gjson.Parse(span).IsObject() {
		return "", false
	}
	return span, true
}

// ExtractProduct converts one agent response into a validated ProductRecord.
//
// Policy: a non-empty pre-parsed payload wins; otherwise the free text is
// sanitized and scanned for a single embedded JSON object. When neither
// yields anything usable, the caller's policy decides: with allowDefault a
// minimal record (name = fallbackName, price "N/A") is returned, otherwise
// ErrUnparseable. Never panics.
func ExtractProduct(resp *domain.AgentResponse, fallbackName string, allowDefault bool) (*domain.ProductRecord, error) {
	if resp != nil && len(resp.Parsed) > 0 {
		return productFromFields(resp.Parsed, fallbackName), nil
	}

	if resp != nil && resp.Text != "" {
		if span, ok := ExtractJSONObject(SanitizeResponseText(resp.Text)); ok {
			fields := map[string]interface{}{}
			gjson.Parse(span).ForEach(func(key, value gjson.Result) bool {
				fields[key.String()] = value.Value()
				return true
			})
			if len(fields) > 0 {
				return productFromFields(fields, fallbackName), nil
			}
		}
	}

	if allowDefault {
		return &domain.ProductRecord{Name: fallbackName, Price: "N/A", Available: true}, nil
	}
	return nil, domain.ErrUnparseable
}

// productFromFields builds a record from loosely-typed payload fields,
// applying defaults for anything missing.
func productFromFields(fields map[string]interface{}, fallbackName string) *domain.ProductRecord {
	record := &domain.ProductRecord{
		Name:      stringField(fields, "name", fallbackName),
		Price:     stringField(fields, "price", "N/A"),
		Available: true,
		RawASIN:   stringField(fields, "asin", ""),
		RawURL:    stringField(fields, "url", ""),
	}
	if v, ok := fields["available"].(bool); ok {
		record.Available = v
	}
	return record
}

func stringField(fields map[string]interface{}, key, fallback string) string {
	if v, ok := fields[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// ExtractNutrition converts one agent response into a flat numeric nutrient
// map. Non-numeric fields are ignored; no usable payload yields ErrUnparseable.
func ExtractNutrition(resp *domain.AgentResponse) (map[string]float64, error) {
	if resp != nil && len(resp.Parsed) > 0 {
		if n := numericFields(resp.Parsed); len(n) > 0 {
			return n, nil
		}
	}

	if resp != nil && resp.Text != "" {
		if span, ok := ExtractJSONObject(SanitizeResponseText(resp.Text)); ok {
			nutrients := map[string]float64{}
			gjson.Parse(span).ForEach(func(key, value gjson.Result) bool {
				if value.Type == gjson.Number {
					nutrients[key.String()] = value.Float()
				}
				return true
			})
			if len(nutrients) > 0 {
				return nutrients, nil
			}
		}
	}

	return nil, domain.ErrUnparseable
}

func numericFields(fields map[string]interface{}) map[string]float64 {
	nutrients := map[string]float64{}
	for key, value := range fields {
		switch v := value.(type) {
		case float64:
			nutrients[key] = v
		case int:
			nutrients[key] = float64(v)
		}
	}
	return nutrients
}
