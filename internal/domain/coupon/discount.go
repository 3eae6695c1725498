package coupon

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// RegularDiscount computes the discount a single regular coupon yields against
// an order subtotal. A zero return is the sole "not applicable" signal: the
// minimum order gate is unmet, the coupon is malformed, or there is nothing
// to discount. The result never exceeds the subtotal.
func RegularDiscount(c RegularCoupon, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 || c.Value.Sign() <= 0 {
		return zero
	}
	if c.MinOrderAmount.IsPositive() && subtotal.LessThan(c.MinOrderAmount) {
		return zero
	}

	switch c.Kind {
	case KindFixed:
		return decimal.Min(c.Value, subtotal)
	case KindPercentage:
		amount := subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount.IsPositive() {
			amount = decimal.Min(amount, c.MaxDiscount)
		}
		// A percentage above 100 would otherwise discount more than the
		// order is worth.
		return decimal.Min(amount, subtotal)
	default:
		return zero
	}
}

// DishMatch reports which line items a dish coupon applies to.
type DishMatch struct {
	Applicable bool
	Items      []LineItem
}

// ExtendedPrice returns the summed extended price of the matched items.
func (m DishMatch) ExtendedPrice() decimal.Decimal {
	sum := zero
	for _, it := range m.Items {
		sum = sum.Add(it.ExtendedPrice())
	}
	return sum
}

// MatchDish selects the line items whose normalized name equals the coupon's
// normalized dish name.
func MatchDish(dc DishCoupon, items []LineItem) DishMatch {
	want := NormalizeDishName(dc.DishName)
	if want == "" {
		return DishMatch{}
	}

	var matched []LineItem
	for _, it := range items {
		if NormalizeDishName(it.Name) == want {
			matched = append(matched, it)
		}
	}
	return DishMatch{
		Applicable: len(matched) > 0,
		Items:      matched,
	}
}

// DishDiscount computes the discount a single dish coupon yields against the
// matching line items. It returns zero when no item matches or the coupon is
// malformed. The result never exceeds the matched items' extended price.
func DishDiscount(dc DishCoupon, items []LineItem) decimal.Decimal {
	if dc.Percent.Sign() <= 0 {
		return zero
	}

	m := MatchDish(dc, items)
	if !m.Applicable {
		return zero
	}

	extended := m.ExtendedPrice()
	amount := extended.Mul(dc.Percent).Div(hundred)
	return decimal.Min(amount, extended)
}
