package models

import (
	"math"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------

// MQuote represents a single point-in-time price observation for a symbol,
// normalized across all providers. Quotes are produced fresh every tick and
// never mutated after creation.
type MQuote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	IsSynthetic   bool      `json:"isSynthetic"`
}

// -----------------------------------------------------------------------------

// Source labels for synthetic quotes. Downstream consumers must be able to
// tell fabricated data from real data, and why it was fabricated.
const (
	SourceSyntheticClosed   = "synthetic:market-closed"
	SourceSyntheticFallback = "synthetic:providers-down"
)

// -----------------------------------------------------------------------------

// HasPrice reports whether the quote carries a usable price field.
// A zero, negative or NaN price counts as a provider failure, not a success.
func (q *MQuote) HasPrice() bool {
	return q != nil && q.Price > 0 && !math.IsNaN(q.Price) && !math.IsInf(q.Price, 0)
}

// -----------------------------------------------------------------------------

// NormalizeSymbol upper-cases and trims a ticker. Symbols are the identity
// key for all per-symbol state, so they are case-normalized on ingestion.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// -----------------------------------------------------------------------------

// NormalizeSymbols normalizes and de-duplicates a symbol list, preserving
// first-seen order. Empty entries are dropped.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := NormalizeSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
