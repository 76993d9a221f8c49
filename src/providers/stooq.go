package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// Stooq implements interfaces.IQuoteProvider for the free Stooq CSV quote
// feed. The feed needs no credentials, which makes it the natural
// off-hours provider: always available, no paid real-time entitlement.
type Stooq struct {
	Name   string
	Logger *zap.Logger
	Config *models.MProviderConfig
	Client *http.Client
}

// -----------------------------------------------------------------------------
// CONSTRUCTOR AND REGISTRATION
// -----------------------------------------------------------------------------

func init() {
	if err := Register("stooq", NewStooq); err != nil {
		fmt.Printf("Error registering Stooq provider: %v\n", err)
	}
}

// -----------------------------------------------------------------------------

// NewStooq creates a new Stooq provider instance.
func NewStooq(cfg *models.MProviderConfig, logger *zap.Logger) (interfaces.IQuoteProvider, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("stooq provider requires an endpoint")
	}
	return &Stooq{
		Name:   cfg.Name,
		Logger: logger,
		Config: cfg,
		Client: &http.Client{},
	}, nil
}

// -----------------------------------------------------------------------------
// IQuoteProvider IMPLEMENTATION
// -----------------------------------------------------------------------------

// GetName returns the provider name used in Quote.Source.
func (s *Stooq) GetName() string {
	return s.Name
}

// -----------------------------------------------------------------------------

// IsValid always reports true: the feed is unauthenticated.
func (s *Stooq) IsValid() bool {
	return true
}

// -----------------------------------------------------------------------------

// GetTimeout returns the configured per-call deadline.
func (s *Stooq) GetTimeout() time.Duration {
	return s.Config.Timeout
}

// -----------------------------------------------------------------------------

// GetQuote fetches the latest close for a symbol. Stooq quotes US equities
// under a ".us" suffix and answers CSV:
//
//	Symbol,Date,Time,Open,High,Low,Close,Volume
//	AAPL.US,2025-07-16,21:59:59,233.1,234.5,231.9,233.8,45120000
func (s *Stooq) GetQuote(ctx context.Context, symbol string) (*models.MQuote, error) {
	ticker := strings.ToLower(models.NormalizeSymbol(symbol)) + ".us"
	reqURL := fmt.Sprintf("%s?s=%s&f=sd2t2ohlcv&h&e=csv", s.Config.Endpoint, url.QueryEscape(ticker))

	body, err := fetch(ctx, s.Client, reqURL)
	if err != nil {
		return nil, err
	}

	return s.parseCSV(symbol, string(body))
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// parseCSV extracts open and close from the two-line CSV payload. Change is
// derived from open→close since the feed carries no explicit change field.
func (s *Stooq) parseCSV(symbol, body string) (*models.MQuote, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: %s returned %d csv lines", models.ErrProviderInvalidResponse, s.Name, len(lines))
	}

	fields := strings.Split(strings.TrimSpace(lines[1]), ",")
	if len(fields) < 8 {
		return nil, fmt.Errorf("%w: %s returned %d csv fields", models.ErrProviderInvalidResponse, s.Name, len(fields))
	}

	// Stooq reports unknown symbols with "N/D" placeholders.
	if fields[6] == "N/D" {
		return nil, fmt.Errorf("%w: %s has no data for %s", models.ErrSymbolNotFound, s.Name, symbol)
	}

	closePrice, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s close field: %v", models.ErrProviderInvalidResponse, s.Name, err)
	}

	var change, changePercent float64
	if openPrice, err := strconv.ParseFloat(fields[3], 64); err == nil && openPrice > 0 {
		change = closePrice - openPrice
		changePercent = change / openPrice * 100
	}

	return &models.MQuote{
		Symbol:        models.NormalizeSymbol(symbol),
		Price:         closePrice,
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now().UTC(),
		Source:        s.Name,
		IsSynthetic:   false,
	}, nil
}
