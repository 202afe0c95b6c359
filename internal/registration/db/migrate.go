package db

import (
	"context"
	"ms-registration/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates the tables this service owns or reads. Events and
// discount codes are written by the content layer; the tables are created
// here only so a fresh local database is usable.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Order)(nil),
		(*models.Event)(nil),
		(*models.EventDate)(nil),
		(*models.DiscountCode)(nil),
	}
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
