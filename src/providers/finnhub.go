package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"context"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// Finnhub implements interfaces.IQuoteProvider for the Finnhub quote API.
type Finnhub struct {
	Name   string
	Logger *zap.Logger
	Config *models.MProviderConfig
	Client *http.Client
}

// -----------------------------------------------------------------------------
// CONSTRUCTOR AND REGISTRATION
// -----------------------------------------------------------------------------

func init() {
	// Register the provider with the name "finnhub" for dynamic creation
	if err := Register("finnhub", NewFinnhub); err != nil {
		fmt.Printf("Error registering Finnhub provider: %v\n", err)
	}
}

// -----------------------------------------------------------------------------

// NewFinnhub creates a new Finnhub provider instance.
// Matches the interfaces.IProviderConstructor signature.
func NewFinnhub(cfg *models.MProviderConfig, logger *zap.Logger) (interfaces.IQuoteProvider, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("finnhub provider requires an endpoint")
	}
	return &Finnhub{
		Name:   cfg.Name,
		Logger: logger,
		Config: cfg,
		// Per-call deadlines come from the caller's context; the client
		// itself stays unbounded.
		Client: &http.Client{},
	}, nil
}

// -----------------------------------------------------------------------------
// IQuoteProvider IMPLEMENTATION
// -----------------------------------------------------------------------------

// GetName returns the provider name used in Quote.Source.
func (f *Finnhub) GetName() string {
	return f.Name
}

// -----------------------------------------------------------------------------

// IsValid reports whether usable credentials are configured. Finnhub
// rejects unauthenticated calls, so no token means no call.
func (f *Finnhub) IsValid() bool {
	return f.Config.APIKey != ""
}

// -----------------------------------------------------------------------------

// GetTimeout returns the configured per-call deadline.
func (f *Finnhub) GetTimeout() time.Duration {
	return f.Config.Timeout
}

// -----------------------------------------------------------------------------

// GetQuote fetches the current quote for a symbol.
func (f *Finnhub) GetQuote(ctx context.Context, symbol string) (*models.MQuote, error) {
	symbol = models.NormalizeSymbol(symbol)
	reqURL := fmt.Sprintf("%s?symbol=%s&token=%s",
		f.Config.Endpoint, url.QueryEscape(symbol), url.QueryEscape(f.Config.APIKey))

	body, err := fetch(ctx, f.Client, reqURL)
	if err != nil {
		return nil, err
	}

	// Finnhub quote payload: c=current, d=change, dp=change percent, t=unix.
	var payload struct {
		Current       float64 `json:"c"`
		Change        float64 `json:"d"`
		ChangePercent float64 `json:"dp"`
		Timestamp     int64   `json:"t"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrProviderInvalidResponse, f.Name, err)
	}

	// Finnhub reports unknown symbols as an all-zero payload.
	if payload.Current == 0 {
		return nil, fmt.Errorf("%w: %s returned no price for %s", models.ErrProviderInvalidResponse, f.Name, symbol)
	}

	ts := time.Now().UTC()
	if payload.Timestamp > 0 {
		ts = time.Unix(payload.Timestamp, 0).UTC()
	}

	return &models.MQuote{
		Symbol:        symbol,
		Price:         payload.Current,
		Change:        payload.Change,
		ChangePercent: payload.ChangePercent,
		Timestamp:     ts,
		Source:        f.Name,
		IsSynthetic:   false,
	}, nil
}
