package coupon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Violation identifies the rule a coupon combination breaks. Violations are
// validation outcomes, not Go errors: the calling UI renders them inline.
type Violation string

const (
	// ViolationNoSelection: neither a regular nor a dish coupon was chosen.
	ViolationNoSelection Violation = "no_selection"
	// ViolationMinOrderNotMet: the subtotal is below the coupon's minimum.
	ViolationMinOrderNotMet Violation = "min_order_not_met"
	// ViolationNotApplicable: a chosen coupon's computed discount is zero.
	ViolationNotApplicable Violation = "not_applicable"
	// ViolationDishUnavailable: no order item matches a dish coupon's dish.
	ViolationDishUnavailable Violation = "dish_unavailable"
	// ViolationDuplicateDish: two selected dish coupons target the same dish.
	ViolationDuplicateDish Violation = "duplicate_dish"
)

// Result is the outcome of validating a coupon combination.
type Result struct {
	OK        bool
	Violation Violation
	// Message is a user-facing description of the violation.
	Message string
	// Dish names the offending dish for dish-related violations.
	Dish string
	// RequiredMin carries the unmet minimum order amount for
	// ViolationMinOrderNotMet.
	RequiredMin decimal.Decimal
}

// Valid returns a passing Result.
func Valid() Result {
	return Result{OK: true}
}

func invalid(v Violation, msg string) Result {
	return Result{Violation: v, Message: msg}
}

// ValidateSelection decides whether a tentative selection (at most one regular
// coupon plus a set of dish coupons) is valid as a whole against the current
// subtotal and items. Checks run in order and short-circuit on the first
// failure.
//
// The applicability filter prevents invalid combinations during interactive
// selection, but the order's items can change between a toggle and the final
// confirm, so the full combination is re-checked here at commit time.
func ValidateSelection(sel Selection, subtotal decimal.Decimal, items []LineItem) Result {
	if sel.Empty() {
		return invalid(ViolationNoSelection, "Please select a coupon")
	}

	if c := sel.Regular; c != nil {
		if RegularDiscount(*c, subtotal).IsZero() {
			if c.MinOrderAmount.IsPositive() && subtotal.LessThan(c.MinOrderAmount) {
				r := invalid(ViolationMinOrderNotMet, fmt.Sprintf(
					"Minimum order of %s required for coupon %q",
					c.MinOrderAmount.StringFixed(2), c.Name,
				))
				r.RequiredMin = c.MinOrderAmount
				return r
			}
			return invalid(ViolationNotApplicable, fmt.Sprintf(
				"Coupon %q is not applicable to this order", c.Name,
			))
		}
	}

	for _, dc := range sel.Dishes {
		if DishDiscount(dc, items).IsZero() {
			r := invalid(ViolationDishUnavailable, fmt.Sprintf(
				"No dish available for this discount: %s", dc.DishName,
			))
			r.Dish = dc.DishName
			return r
		}
	}

	seen := make(map[string]struct{}, len(sel.Dishes))
	for _, dc := range sel.Dishes {
		name := NormalizeDishName(dc.DishName)
		if _, ok := seen[name]; ok {
			r := invalid(ViolationDuplicateDish, fmt.Sprintf(
				"Only one coupon per dish is allowed: %s", dc.DishName,
			))
			r.Dish = dc.DishName
			return r
		}
		seen[name] = struct{}{}
	}

	return Valid()
}
