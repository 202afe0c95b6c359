package registration

import (
	"time"
)

// Timestamps arrive from the catalog and from clients in a few ISO
// shapes; minutes-precision values lack the seconds RFC3339 requires.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DurationDays computes the inclusive whole-day span between two
// timestamps. Both are normalized to midnight first so time-of-day and
// DST offsets cannot skew the count. Returns false when either input is
// missing or unparseable, or the span is non-positive.
func DurationDays(start, end string) (int, bool) {
	s, ok := parseTimestamp(start)
	if !ok {
		return 0, false
	}
	e, ok := parseTimestamp(end)
	if !ok {
		return 0, false
	}

	s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
	e = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, e.Location())

	// Round absorbs the one-hour skew a DST transition introduces.
	hours := e.Sub(s).Hours()
	days := int(hours/24+0.5) + 1
	if hours < 0 || days <= 0 {
		return 0, false
	}
	return days, true
}

// Seat prices per supported duration: [qty=1, qty=2, qty=3]. The volume
// discount caps at three seats; beyond that each extra seat costs the
// single-seat rate again.
var priceBands = map[int][3]float64{
	2: {1500, 2300, 3000},
	3: {1750, 2800, 3500},
}

// PriceForQuantity maps a date range and seat count to a total amount.
// A duration outside the supported set prices to 0, which signals an
// unsupported event length rather than silently charging something.
func PriceForQuantity(start, end string, quantity int) float64 {
	days, ok := DurationDays(start, end)
	if !ok {
		return 0
	}
	band, ok := priceBands[days]
	if !ok {
		return 0
	}
	if quantity < 1 {
		return 0
	}
	if quantity <= 3 {
		return band[quantity-1]
	}
	return band[2] + band[0]*float64(quantity-3)
}
