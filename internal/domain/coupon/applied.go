package coupon

import "github.com/shopspring/decimal"

// AppliedRegularCoupon is the frozen record of a regular coupon accepted onto
// an order. The amount is a snapshot taken at selection time and is never
// recomputed, even if the catalog coupon or the order items later change.
type AppliedRegularCoupon struct {
	CouponID       string          `json:"couponId"`
	Name           string          `json:"name"`
	Kind           DiscountKind    `json:"kind"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// AppliedDishCoupon is the frozen record of a dish coupon accepted onto an
// order. MatchedItemCount counts the line items matched at freeze time.
type AppliedDishCoupon struct {
	CouponID         string          `json:"couponId"`
	DishName         string          `json:"dishName"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	MatchedItemCount int             `json:"matchedItemCount"`
}

// OrderCoupons is the persisted aggregate of all coupons applied to an order:
// at most one regular coupon plus at most one dish coupon per distinct dish.
// It is replaced wholesale on every re-apply; there is no partial merge.
type OrderCoupons struct {
	Regular *AppliedRegularCoupon `json:"regularCoupon,omitempty"`
	Dishes  []AppliedDishCoupon   `json:"dishCoupons,omitempty"`
}

// Empty reports whether no coupon is applied.
func (oc OrderCoupons) Empty() bool {
	return oc.Regular == nil && len(oc.Dishes) == 0
}

// NewAppliedRegular freezes a regular coupon against the subtotal. It returns
// nil when the computed discount is zero: a zero or invalid application is
// never frozen.
func NewAppliedRegular(c RegularCoupon, subtotal decimal.Decimal) *AppliedRegularCoupon {
	amount := RegularDiscount(c, subtotal)
	if amount.IsZero() {
		return nil
	}
	return &AppliedRegularCoupon{
		CouponID:       c.ID,
		Name:           c.Name,
		Kind:           c.Kind,
		DiscountAmount: amount.Round(2),
	}
}

// NewAppliedDish freezes a dish coupon against the matching items. It returns
// nil when the computed discount is zero.
func NewAppliedDish(dc DishCoupon, items []LineItem) *AppliedDishCoupon {
	amount := DishDiscount(dc, items)
	if amount.IsZero() {
		return nil
	}
	m := MatchDish(dc, items)
	return &AppliedDishCoupon{
		CouponID:         dc.ID,
		DishName:         dc.DishName,
		DiscountAmount:   amount.Round(2),
		MatchedItemCount: len(m.Items),
	}
}

// Build validates the selection as a whole and, when valid, freezes it into
// an OrderCoupons aggregate. On a failed validation it returns an empty
// aggregate and the violating Result.
func Build(sel Selection, subtotal decimal.Decimal, items []LineItem) (OrderCoupons, Result) {
	res := ValidateSelection(sel, subtotal, items)
	if !res.OK {
		return OrderCoupons{}, res
	}

	var oc OrderCoupons
	if sel.Regular != nil {
		oc.Regular = NewAppliedRegular(*sel.Regular, subtotal)
	}
	for _, dc := range sel.Dishes {
		if applied := NewAppliedDish(dc, items); applied != nil {
			oc.Dishes = append(oc.Dishes, *applied)
		}
	}
	return oc, res
}

// Breakdown splits the total discount by source.
type Breakdown struct {
	Regular decimal.Decimal `json:"regular"`
	Dish    decimal.Decimal `json:"dish"`
}

// TotalDiscount sums the frozen discount amounts of an applied aggregate.
// It is a pure re-derivation from the snapshot and deliberately never calls
// the calculators: the number shown must match what was frozen even when the
// live item state has since diverged.
//
// The total is not capped at the order subtotal: a regular coupon and several
// dish coupons can legitimately sum past it, and the order collaborator floors
// the final total at zero instead.
func TotalDiscount(oc OrderCoupons) (decimal.Decimal, Breakdown) {
	var b Breakdown
	b.Regular = zero
	b.Dish = zero

	if oc.Regular != nil {
		b.Regular = oc.Regular.DiscountAmount
	}
	for _, dc := range oc.Dishes {
		b.Dish = b.Dish.Add(dc.DiscountAmount)
	}
	return b.Regular.Add(b.Dish), b
}
