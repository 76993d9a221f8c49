package models

import "errors"

// -----------------------------------------------------------------------------

// Provider failure taxonomy. The quote resolver treats the first three
// identically (advance the fallback chain) and terminates in synthesis
// rather than surfacing any of them to a subscriber.
var (
	// ErrProviderUnavailable covers network failures, timeouts and 5xx
	// responses from a vendor.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderRateLimited is returned when a vendor rejects the call
	// with a rate-limit response.
	ErrProviderRateLimited = errors.New("provider rate limited")

	// ErrProviderInvalidResponse is returned when a vendor answered but
	// the payload carries no usable price field.
	ErrProviderInvalidResponse = errors.New("provider returned invalid response")

	// ErrSymbolNotFound is returned when a vendor does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// -----------------------------------------------------------------------------

// ErrTransportClosed is fatal to a single stream session only: the session
// stops and releases its resources. It must never propagate to other
// sessions or crash the registry.
var ErrTransportClosed = errors.New("subscriber transport closed")

// -----------------------------------------------------------------------------

// ErrEmptySymbolSet is returned when a subscription carries no symbols.
// An empty symbol set must not start a tick loop at all.
var ErrEmptySymbolSet = errors.New("subscription symbol set is empty")
