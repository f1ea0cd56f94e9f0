// Package budget classifies expense tags into budget buckets.
package budget

import (
	"strings"

	"richr/internal/core"
)

// Tag word lists, matched case-insensitively and in priority order.
// First match wins.
var (
	needTags = map[string]struct{}{
		"groceries": {},
		"bills":     {},
		"rent":      {},
		"education": {},
		"health":    {},
		"fuel":      {},
	}

	wantTags = map[string]struct{}{
		"food":          {},
		"entertainment": {},
		"shopping":      {},
		"travel":        {},
		"hobbies":       {},
	}

	investmentTags = map[string]struct{}{
		"investment": {},
		"stocks":     {},
		"sip":        {},
		"gold":       {},
	}
)

// Classify maps a free-text tag to its budget bucket. It is a total
// function: every input resolves to a bucket so downstream aggregation
// never has to handle a classification failure. Unknown tags fall back
// to Want. The "income" tag also resolves to Want, a harmless default;
// income transactions do not carry a meaningful bucket and callers
// must not rely on one.
func Classify(tag string) core.Bucket {
	key := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case key == "income":
		return core.Want
	case member(needTags, key):
		return core.Need
	case member(wantTags, key):
		return core.Want
	case member(investmentTags, key):
		return core.Investment
	default:
		return core.Want
	}
}

func member(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
