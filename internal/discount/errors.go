package discount

import "errors"

var (
	ErrEmptyCode     = errors.New("discount code is required")
	ErrCodeNotFound  = errors.New("discount code not found")
	ErrCodeExpired   = errors.New("discount code has expired")
	ErrCodeExhausted = errors.New("discount code has no uses left")
)
