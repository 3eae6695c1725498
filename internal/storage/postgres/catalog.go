package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
)

const (
	listRegularCouponsSQL = `SELECT id, name, kind, value, min_order_amount, max_discount, description
		FROM coupons WHERE location_id = $1 AND active = TRUE
		ORDER BY position, id`

	listDishCouponsSQL = `SELECT id, coupon_code, dish_name, discount_percentage
		FROM dish_coupons WHERE location_id = $1 AND active = TRUE
		ORDER BY position, id`

	upsertRegularCouponSQL = `INSERT INTO coupons (id, location_id, name, kind, value, min_order_amount, max_discount, description, active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			location_id = EXCLUDED.location_id,
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			value = EXCLUDED.value,
			min_order_amount = EXCLUDED.min_order_amount,
			max_discount = EXCLUDED.max_discount,
			description = EXCLUDED.description,
			active = EXCLUDED.active,
			position = EXCLUDED.position`

	upsertDishCouponSQL = `INSERT INTO dish_coupons (id, location_id, coupon_code, dish_name, discount_percentage, active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			location_id = EXCLUDED.location_id,
			coupon_code = EXCLUDED.coupon_code,
			dish_name = EXCLUDED.dish_name,
			discount_percentage = EXCLUDED.discount_percentage,
			active = EXCLUDED.active,
			position = EXCLUDED.position`
)

var _ coupon.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements coupon.Repository backed by PostgreSQL.
// Rows are returned in stable catalog order (position, then id) so the
// applicability filter's order-preservation guarantee holds end to end.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListRegular returns the active regular coupons of a location.
func (r *CatalogRepository) ListRegular(ctx context.Context, locationID string) ([]coupon.RegularCoupon, error) {
	rows, err := r.pool.Query(ctx, listRegularCouponsSQL, locationID)
	if err != nil {
		return nil, fmt.Errorf("listing regular coupons for location %q: %w", locationID, err)
	}
	return pgx.CollectRows(rows, scanRegularCoupon)
}

// ListDish returns the active dish coupons of a location.
func (r *CatalogRepository) ListDish(ctx context.Context, locationID string) ([]coupon.DishCoupon, error) {
	rows, err := r.pool.Query(ctx, listDishCouponsSQL, locationID)
	if err != nil {
		return nil, fmt.Errorf("listing dish coupons for location %q: %w", locationID, err)
	}
	return pgx.CollectRows(rows, scanDishCoupon)
}

// UpsertRegular inserts or updates a regular coupon. Used by the seeding and
// import tools.
func (r *CatalogRepository) UpsertRegular(ctx context.Context, locationID string, c coupon.RegularCoupon, position int) error {
	_, err := r.pool.Exec(ctx, upsertRegularCouponSQL,
		c.ID, locationID, c.Name, string(c.Kind), c.Value,
		c.MinOrderAmount, c.MaxDiscount, c.Description, true, position)
	if err != nil {
		return fmt.Errorf("upserting coupon %q: %w", c.ID, err)
	}
	return nil
}

// UpsertDish inserts or updates a dish coupon.
func (r *CatalogRepository) UpsertDish(ctx context.Context, locationID string, dc coupon.DishCoupon, position int) error {
	_, err := r.pool.Exec(ctx, upsertDishCouponSQL,
		dc.ID, locationID, dc.Code, dc.DishName, dc.Percent, true, position)
	if err != nil {
		return fmt.Errorf("upserting dish coupon %q: %w", dc.ID, err)
	}
	return nil
}

func scanRegularCoupon(row pgx.CollectableRow) (coupon.RegularCoupon, error) {
	var (
		c    coupon.RegularCoupon
		kind string
	)
	err := row.Scan(&c.ID, &c.Name, &kind, &c.Value, &c.MinOrderAmount, &c.MaxDiscount, &c.Description)
	c.Kind = coupon.DiscountKind(kind)
	return c, err
}

func scanDishCoupon(row pgx.CollectableRow) (coupon.DishCoupon, error) {
	var dc coupon.DishCoupon
	err := row.Scan(&dc.ID, &dc.Code, &dc.DishName, &dc.Percent)
	return dc, err
}
