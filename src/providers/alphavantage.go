package providers

import (
	"context"
	"encoding/json"
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

// AlphaVantage implements interfaces.IQuoteProvider for the Alpha Vantage
// GLOBAL_QUOTE endpoint. All numeric fields arrive as strings.
type AlphaVantage struct {
	Name   string
	Logger *zap.Logger
	Config *models.MProviderConfig
	Client *http.Client
}

// -----------------------------------------------------------------------------
// CONSTRUCTOR AND REGISTRATION
// -----------------------------------------------------------------------------

func init() {
	if err := Register("alphavantage", NewAlphaVantage); err != nil {
		fmt.Printf("Error registering AlphaVantage provider: %v\n", err)
	}
}

// -----------------------------------------------------------------------------

// NewAlphaVantage creates a new Alpha Vantage provider instance.
func NewAlphaVantage(cfg *models.MProviderConfig, logger *zap.Logger) (interfaces.IQuoteProvider, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("alphavantage provider requires an endpoint")
	}
	return &AlphaVantage{
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
func (a *AlphaVantage) GetName() string {
	return a.Name
}

// -----------------------------------------------------------------------------

// IsValid reports whether usable credentials are configured.
func (a *AlphaVantage) IsValid() bool {
	return a.Config.APIKey != ""
}

// -----------------------------------------------------------------------------

// GetTimeout returns the configured per-call deadline.
func (a *AlphaVantage) GetTimeout() time.Duration {
	return a.Config.Timeout
}

// -----------------------------------------------------------------------------

// GetQuote fetches the current quote for a symbol.
func (a *AlphaVantage) GetQuote(ctx context.Context, symbol string) (*models.MQuote, error) {
	symbol = models.NormalizeSymbol(symbol)
	reqURL := fmt.Sprintf("%s?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		a.Config.Endpoint, url.QueryEscape(symbol), url.QueryEscape(a.Config.APIKey))

	body, err := fetch(ctx, a.Client, reqURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		GlobalQuote struct {
			Price         string `json:"05. price"`
			Change        string `json:"09. change"`
			ChangePercent string `json:"10. change percent"`
		} `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrProviderInvalidResponse, a.Name, err)
	}

	// An unknown symbol comes back as an empty Global Quote object.
	if payload.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("%w: %s returned no price for %s", models.ErrProviderInvalidResponse, a.Name, symbol)
	}

	price, err := strconv.ParseFloat(payload.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s price field: %v", models.ErrProviderInvalidResponse, a.Name, err)
	}

	// Change fields are best-effort; a quote with only a price is usable.
	change, _ := strconv.ParseFloat(payload.GlobalQuote.Change, 64)
	changePercent, _ := strconv.ParseFloat(strings.TrimSuffix(payload.GlobalQuote.ChangePercent, "%"), 64)

	return &models.MQuote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now().UTC(),
		Source:        a.Name,
		IsSynthetic:   false,
	}, nil
}
