package discount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-registration/internal/models"
)

type Store interface {
	GetActiveByCode(ctx context.Context, code string) (*models.DiscountCode, error)
}

// Service validates discount codes read-only. Activation, expiry and
// remaining uses are checked at validation time; decrementing a use
// happens elsewhere, when the order is actually placed.
type Service struct {
	DB Store
}

func NewService(db Store) *Service {
	return &Service{DB: db}
}

// Validate trims and looks up a code, then checks expiry and remaining
// uses. On success the normalized discount descriptor is returned.
func (s *Service) Validate(ctx context.Context, code string) (*models.DiscountResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	dc, err := s.DB.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
		}
		return nil, err
	}

	if !dc.ExpiresAt.IsZero() && dc.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrCodeExpired, code)
	}
	if dc.LimitedUsage && dc.UsesLeft < 1 {
		return nil, fmt.Errorf("%w: %s", ErrCodeExhausted, code)
	}

	return &models.DiscountResult{
		Valid:        true,
		Code:         dc.Code,
		Type:         dc.Type,
		Value:        dc.Value,
		LimitedUsage: dc.LimitedUsage,
		UsesLeft:     dc.UsesLeft,
	}, nil
}
