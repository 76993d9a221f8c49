package interfaces

import "time"

// -----------------------------------------------------------------------------

// IMarketClock answers whether the exchange is currently open. The
// implementation computes this from calendar and daylight-saving rules,
// independent of any provider's opinion.
type IMarketClock interface {
	IsOpen(now time.Time) bool
}
