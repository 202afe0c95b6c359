package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Discount code types.
const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// DiscountCode is created and edited externally; this service only reads
// it. Expiry and remaining uses are evaluated at validation time, the
// decrement happens elsewhere.
type DiscountCode struct {
	bun.BaseModel `bun:"table:discount_codes"`

	Code         string    `bun:"code,pk" json:"code"`
	Active       bool      `bun:"active,notnull" json:"active"`
	ExpiresAt    time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	LimitedUsage bool      `bun:"limited_usage" json:"limited_usage"`
	UsesLeft     int       `bun:"uses_left" json:"uses_left"`
	Type         string    `bun:"type,notnull" json:"type"`
	Value        float64   `bun:"value,notnull" json:"value"`
}

// DiscountResult is the normalized outcome of validating a code.
type DiscountResult struct {
	Valid        bool    `json:"valid"`
	Code         string  `json:"code,omitempty"`
	Type         string  `json:"type,omitempty"`
	Value        float64 `json:"value,omitempty"`
	LimitedUsage bool    `json:"limited_usage,omitempty"`
	UsesLeft     int     `json:"uses_left,omitempty"`
	Message      string  `json:"message,omitempty"`
}
