package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
	"github.com/zestpos/coupon-service/internal/domain/order"
)

const (
	getOrderByIDSQL = `SELECT id, location_id, table_name, status, items, coupons, discounts, total, created_at
		FROM orders WHERE id = $1`

	updateOrderCouponsSQL = `UPDATE orders SET coupons = $2, discounts = $3, total = $4 WHERE id = $1`

	createOrderSQL = `INSERT INTO orders (id, location_id, table_name, status, items, coupons, discounts, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items and the frozen coupon aggregate live in JSONB columns, mirroring the
// document shape the POS clients persist.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID loads a full order document.
// Returns order.ErrOrderNotFound when no such order exists.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// UpdateCoupons replaces the order's coupon aggregate, discount total, and
// order total wholesale.
func (r *OrderRepository) UpdateCoupons(ctx context.Context, o *order.Order) error {
	couponsJSON, err := json.Marshal(o.Coupons)
	if err != nil {
		return fmt.Errorf("marshaling order coupons: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderCouponsSQL, o.ID, couponsJSON, o.Discounts, o.Total)
	if err != nil {
		return fmt.Errorf("updating coupons for order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Create persists a new order document. Used by seeding and tests; order
// creation itself belongs to the order-entry system.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	couponsJSON, err := json.Marshal(o.Coupons)
	if err != nil {
		return fmt.Errorf("marshaling order coupons: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.LocationID, o.TableName, string(o.Status), itemsJSON, couponsJSON, o.Discounts, o.Total,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		status      string
		itemsJSON   []byte
		couponsJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.LocationID, &o.TableName, &status,
		&itemsJSON, &couponsJSON, &o.Discounts, &o.Total, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	var oc coupon.OrderCoupons
	if err := json.Unmarshal(couponsJSON, &oc); err != nil {
		return o, fmt.Errorf("unmarshaling order coupons: %w", err)
	}
	o.Coupons = oc
	return o, nil
}
