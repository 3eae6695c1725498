package coupon

import "github.com/shopspring/decimal"

// ApplicableDishCoupons narrows the dish coupon catalog to those legally
// selectable next, given the current order items and the coupons already
// selected. A coupon is dropped when no order item matches its dish, or when
// its dish is already covered by a different selected coupon — the selected
// coupon itself stays visible so it can be toggled off. Catalog order is
// preserved.
//
// The filter exists to prevent interaction dead-ends: any combination it
// offers will pass ValidateSelection against the same items.
func ApplicableDishCoupons(catalog []DishCoupon, items []LineItem, selected []DishCoupon) []DishCoupon {
	// normalized dish name -> ID of the coupon already holding that dish.
	covered := make(map[string]string, len(selected))
	for _, dc := range selected {
		covered[NormalizeDishName(dc.DishName)] = dc.ID
	}

	out := make([]DishCoupon, 0, len(catalog))
	for _, dc := range catalog {
		if !MatchDish(dc, items).Applicable {
			continue
		}
		if id, ok := covered[NormalizeDishName(dc.DishName)]; ok && id != dc.ID {
			continue
		}
		out = append(out, dc)
	}
	return out
}

// ApplicableRegularCoupons narrows the regular coupon catalog to those that
// would yield a non-zero discount against the given subtotal. Catalog order
// is preserved.
func ApplicableRegularCoupons(catalog []RegularCoupon, subtotal decimal.Decimal) []RegularCoupon {
	out := make([]RegularCoupon, 0, len(catalog))
	for _, c := range catalog {
		if RegularDiscount(c, subtotal).IsPositive() {
			out = append(out, c)
		}
	}
	return out
}
