package marketclock

import "time"

// -----------------------------------------------------------------------------

// Clock reports whether the US equity session is currently open. The answer
// is computed from calendar and daylight-saving rules alone, never delegated
// to a provider: providers disagree or are unavailable exactly when the
// answer matters most (pre-market testing, provider outage).
type Clock struct{}

// -----------------------------------------------------------------------------

// New returns a session clock for the regular US equity session.
func New() *Clock {
	return &Clock{}
}

// -----------------------------------------------------------------------------

// Exchange-local UTC offsets. The exchange observes US-Eastern time:
// UTC-5 in standard time, UTC-4 during daylight saving.
const (
	standardOffset = -5 * time.Hour
	daylightOffset = -4 * time.Hour
)

// Regular session bounds, minutes from exchange-local midnight.
// 09:30:00 is open, 16:00:00 is closed.
const (
	sessionOpenMinute  = 9*60 + 30
	sessionCloseMinute = 16 * 60
)

// -----------------------------------------------------------------------------

// IsOpen returns true iff the exchange-local weekday is Monday-Friday and
// the exchange-local time is within [09:30, 16:00).
func (c *Clock) IsOpen(now time.Time) bool {
	local := c.exchangeTime(now)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minute := local.Hour()*60 + local.Minute()
	return minute >= sessionOpenMinute && minute < sessionCloseMinute
}

// -----------------------------------------------------------------------------

// exchangeTime converts an instant to exchange-local wall time using the
// daylight-saving window for that instant's calendar year.
func (c *Clock) exchangeTime(now time.Time) time.Time {
	offset := standardOffset
	if c.inDaylightWindow(now) {
		offset = daylightOffset
	}
	return now.UTC().Add(offset)
}

// -----------------------------------------------------------------------------

// inDaylightWindow reports whether the instant falls inside the US daylight
// saving window: [second Sunday of March 02:00 local, first Sunday of
// November 02:00 local). The boundary Sundays are evaluated from the rule,
// not hardcoded dates. 02:00 local is 07:00 UTC at the spring boundary
// (still standard time) and 06:00 UTC at the fall boundary (still daylight
// time).
func (c *Clock) inDaylightWindow(now time.Time) bool {
	utc := now.UTC()
	year := utc.Year()

	start := nthSunday(year, time.March, 2).Add(7 * time.Hour)
	end := nthSunday(year, time.November, 1).Add(6 * time.Hour)

	return !utc.Before(start) && utc.Before(end)
}

// -----------------------------------------------------------------------------

// nthSunday returns midnight UTC of the n-th Sunday of the given month.
func nthSunday(year int, month time.Month, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysToSunday := (7 - int(first.Weekday())) % 7
	return first.AddDate(0, 0, daysToSunday+(n-1)*7)
}
