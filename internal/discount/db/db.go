package db

import (
	"context"
	"ms-registration/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetActiveByCode fetches the active discount record matching the code
// exactly. Inactive records are invisible to validation.
func (d *DB) GetActiveByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := d.Bun.NewSelect().
		Model(&dc).
		Where("code = ?", code).
		Where("active = ?", true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &dc, nil
}
