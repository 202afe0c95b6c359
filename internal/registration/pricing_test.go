package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		wantDays int
		wantOK   bool
	}{
		{"two full days", "2024-03-04T09:00:00Z", "2024-03-05T17:00:00Z", 2, true},
		{"three full days", "2024-03-04T09:00:00Z", "2024-03-06T17:00:00Z", 3, true},
		{"same day", "2024-03-04T09:00:00Z", "2024-03-04T17:00:00Z", 1, true},
		{"minutes precision without seconds", "2024-01-01T23:00Z", "2024-01-02T01:00Z", 2, true},
		{"date only", "2024-06-10", "2024-06-11", 2, true},
		{"end before start", "2024-03-05T09:00:00Z", "2024-03-04T09:00:00Z", 0, false},
		{"missing start", "", "2024-03-05T09:00:00Z", 0, false},
		{"missing end", "2024-03-04T09:00:00Z", "", 0, false},
		{"garbage input", "not-a-date", "2024-03-05T09:00:00Z", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := DurationDays(tt.start, tt.end)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestDurationDaysIgnoresTimeOfDay(t *testing.T) {
	// A late-evening start and early-morning end on consecutive days is
	// still an inclusive two-day span.
	days, ok := DurationDays("2024-01-01T23:00Z", "2024-01-02T01:00Z")
	assert.True(t, ok)
	assert.Equal(t, 2, days)
}

func TestPriceForQuantityTwoDays(t *testing.T) {
	start, end := "2024-03-04T09:00:00Z", "2024-03-05T17:00:00Z"

	assert.Equal(t, 1500.0, PriceForQuantity(start, end, 1))
	assert.Equal(t, 2300.0, PriceForQuantity(start, end, 2))
	assert.Equal(t, 3000.0, PriceForQuantity(start, end, 3))
	// Past three seats pricing reverts to linear unit rates.
	assert.Equal(t, 4500.0, PriceForQuantity(start, end, 4))
	assert.Equal(t, 6000.0, PriceForQuantity(start, end, 5))
}

func TestPriceForQuantityThreeDays(t *testing.T) {
	start, end := "2024-03-04T09:00:00Z", "2024-03-06T17:00:00Z"

	assert.Equal(t, 1750.0, PriceForQuantity(start, end, 1))
	assert.Equal(t, 2800.0, PriceForQuantity(start, end, 2))
	assert.Equal(t, 3500.0, PriceForQuantity(start, end, 3))
	assert.Equal(t, 5250.0, PriceForQuantity(start, end, 4))
}

func TestPriceForQuantityUnsupportedDuration(t *testing.T) {
	// One-day and five-day events are not priceable.
	assert.Equal(t, 0.0, PriceForQuantity("2024-03-04T09:00:00Z", "2024-03-04T17:00:00Z", 1))
	assert.Equal(t, 0.0, PriceForQuantity("2024-03-04T09:00:00Z", "2024-03-08T17:00:00Z", 3))
	// And neither is an unparseable range.
	assert.Equal(t, 0.0, PriceForQuantity("", "2024-03-05T09:00:00Z", 2))
}

func TestPriceForQuantityInvalidQuantity(t *testing.T) {
	start, end := "2024-03-04T09:00:00Z", "2024-03-05T17:00:00Z"

	assert.Equal(t, 0.0, PriceForQuantity(start, end, 0))
	assert.Equal(t, 0.0, PriceForQuantity(start, end, -2))
}
