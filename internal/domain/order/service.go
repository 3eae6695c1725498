package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
)

// SelectionRef references catalog coupons by ID, as sent by a POS terminal.
type SelectionRef struct {
	RegularCouponID string
	DishCouponIDs   []string
}

// Empty reports whether the reference selects nothing.
func (r SelectionRef) Empty() bool {
	return r.RegularCouponID == "" && len(r.DishCouponIDs) == 0
}

// Service applies and removes coupon selections on orders. It resolves
// selection references against the location's catalog snapshot, delegates
// validation and freezing to the coupon engine, and persists the result.
type Service struct {
	catalog coupon.Repository
	orders  Repository
}

// NewService creates a Service with the required dependencies.
func NewService(catalog coupon.Repository, orders Repository) *Service {
	return &Service{catalog: catalog, orders: orders}
}

// Get loads an order by ID.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// ApplicableDishCoupons resolves the tentative selection and returns the dish
// coupons still legally selectable for the order, preserving catalog order.
func (s *Service) ApplicableDishCoupons(ctx context.Context, orderID string, ref SelectionRef) ([]coupon.DishCoupon, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.ListDish(ctx, o.LocationID)
	if err != nil {
		return nil, errors.Wrap(err, "list dish coupons")
	}

	selected := make([]coupon.DishCoupon, 0, len(ref.DishCouponIDs))
	for _, id := range ref.DishCouponIDs {
		dc, ok := findDish(catalog, id)
		if !ok {
			return nil, &CouponNotFoundError{CouponID: id}
		}
		selected = append(selected, dc)
	}

	return coupon.ApplicableDishCoupons(catalog, o.Items, selected), nil
}

// ApplyCoupons validates the referenced selection against the order's current
// items at commit time, freezes the discounts, and replaces the order's
// coupon aggregate wholesale. A failed validation is returned as a
// *ValidationError and leaves the persisted order untouched.
func (s *Service) ApplyCoupons(ctx context.Context, orderID string, ref SelectionRef) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusSettled {
		return nil, ErrOrderSettled
	}

	sel, err := s.resolveSelection(ctx, o.LocationID, ref)
	if err != nil {
		return nil, err
	}

	subtotal := o.Subtotal()
	oc, res := coupon.Build(sel, subtotal, o.Items)
	if !res.OK {
		return nil, &ValidationError{Result: res}
	}

	total, _ := coupon.TotalDiscount(oc)
	o.Coupons = oc
	o.Discounts = total.Round(2)
	o.Total = floorAtZero(subtotal.Sub(total)).Round(2)

	if err := s.orders.UpdateCoupons(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order coupons")
	}
	return o, nil
}

// RemoveCoupons clears the order's coupon aggregate wholesale, restoring the
// undiscounted total. Removing from an order with no coupons is a no-op.
func (s *Service) RemoveCoupons(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusSettled {
		return nil, ErrOrderSettled
	}

	o.Coupons = coupon.OrderCoupons{}
	o.Discounts = decimal.Zero
	o.Total = o.Subtotal().Round(2)

	if err := s.orders.UpdateCoupons(ctx, o); err != nil {
		return nil, errors.Wrap(err, "clear order coupons")
	}
	return o, nil
}

// resolveSelection maps coupon IDs to catalog entries from the location's
// current snapshot. Catalog lookups happen once here; the engine works on
// the resolved values only.
func (s *Service) resolveSelection(ctx context.Context, locationID string, ref SelectionRef) (coupon.Selection, error) {
	var sel coupon.Selection

	if ref.RegularCouponID != "" {
		regulars, err := s.catalog.ListRegular(ctx, locationID)
		if err != nil {
			return sel, errors.Wrap(err, "list regular coupons")
		}
		rc, ok := findRegular(regulars, ref.RegularCouponID)
		if !ok {
			return sel, &CouponNotFoundError{CouponID: ref.RegularCouponID}
		}
		sel.Regular = &rc
	}

	if len(ref.DishCouponIDs) > 0 {
		dishes, err := s.catalog.ListDish(ctx, locationID)
		if err != nil {
			return sel, errors.Wrap(err, "list dish coupons")
		}
		for _, id := range ref.DishCouponIDs {
			dc, ok := findDish(dishes, id)
			if !ok {
				return sel, &CouponNotFoundError{CouponID: id}
			}
			sel.Dishes = append(sel.Dishes, dc)
		}
	}

	return sel, nil
}

func findRegular(catalog []coupon.RegularCoupon, id string) (coupon.RegularCoupon, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return coupon.RegularCoupon{}, false
}

func findDish(catalog []coupon.DishCoupon, id string) (coupon.DishCoupon, bool) {
	for _, dc := range catalog {
		if dc.ID == id {
			return dc, true
		}
	}
	return coupon.DishCoupon{}, false
}

func floorAtZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
