package db

import (
	"context"
	"errors"
	"ms-registration/internal/models"

	"github.com/uptrace/bun"
)

// ErrStaleOrder means the version guard matched no row: the order was
// either modified concurrently or deleted.
var ErrStaleOrder = errors.New("order version mismatch")

type DB struct {
	Bun *bun.DB
}

// CreateOrder inserts a new order.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(ctx)
	return err
}

// GetOrderByID fetches one order by its ID.
func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderBySessionID fetches the order correlated with a session token.
func (d *DB) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("session_id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder writes the full order back, guarded by the version the
// caller read. A stale version matches no row and the write is rejected.
func (d *DB) UpdateOrder(ctx context.Context, order *models.Order) error {
	readVersion := order.Version
	order.Version = readVersion + 1

	res, err := d.Bun.NewUpdate().
		Model(order).
		WherePK().
		Where("version = ?", readVersion).
		Exec(ctx)
	if err != nil {
		order.Version = readVersion
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		order.Version = readVersion
		return ErrStaleOrder
	}
	return nil
}
