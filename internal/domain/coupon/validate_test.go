package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSelection(t *testing.T) {
	items := []LineItem{
		{Name: "Biryani", Price: d("180"), Quantity: 2},
		{Name: "Fried Rice", Price: d("150"), Quantity: 1},
	}
	subtotal := d("510")

	flat := RegularCoupon{ID: "c1", Name: "FLAT50", Kind: KindFixed, Value: d("50")}
	gated := RegularCoupon{ID: "c2", Name: "MIN300", Kind: KindFixed, Value: d("40"), MinOrderAmount: d("300")}
	biryani := DishCoupon{ID: "d1", Code: "BIR20", DishName: "Biryani", Percent: d("20")}
	friedRice := DishCoupon{ID: "d2", Code: "FR15", DishName: "Fried Rice", Percent: d("15")}
	friedRiceAlt := DishCoupon{ID: "d3", Code: "FR25", DishName: "fried rice ", Percent: d("25")}
	momos := DishCoupon{ID: "d4", Code: "MOMO5", DishName: "Momos", Percent: d("5")}

	tests := []struct {
		name          string
		sel           Selection
		subtotal      decimal.Decimal
		items         []LineItem
		wantOK        bool
		wantViolation Violation
		wantInMessage string
	}{
		{
			name:          "empty selection",
			sel:           Selection{},
			subtotal:      subtotal,
			items:         items,
			wantViolation: ViolationNoSelection,
			wantInMessage: "Please select a coupon",
		},
		{
			name:     "single valid regular coupon",
			sel:      Selection{Regular: &flat},
			subtotal: subtotal,
			items:    items,
			wantOK:   true,
		},
		{
			name:          "regular coupon below minimum order",
			sel:           Selection{Regular: &gated},
			subtotal:      d("250"),
			items:         items,
			wantViolation: ViolationMinOrderNotMet,
			wantInMessage: "300",
		},
		{
			name:          "regular coupon with zero subtotal is generically inapplicable",
			sel:           Selection{Regular: &flat},
			subtotal:      decimal.Zero,
			items:         nil,
			wantViolation: ViolationNotApplicable,
			wantInMessage: "FLAT50",
		},
		{
			name:          "dish coupon whose dish left the order",
			sel:           Selection{Dishes: []DishCoupon{momos}},
			subtotal:      subtotal,
			items:         items,
			wantViolation: ViolationDishUnavailable,
			wantInMessage: "Momos",
		},
		{
			name:          "two coupons for the same dish",
			sel:           Selection{Dishes: []DishCoupon{friedRice, friedRiceAlt}},
			subtotal:      subtotal,
			items:         items,
			wantViolation: ViolationDuplicateDish,
			wantInMessage: "Only one coupon per dish",
		},
		{
			name:     "regular plus distinct dish coupons",
			sel:      Selection{Regular: &flat, Dishes: []DishCoupon{biryani, friedRice}},
			subtotal: subtotal,
			items:    items,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSelection(tt.sel, tt.subtotal, tt.items)
			if tt.wantOK {
				assert.True(t, res.OK, "unexpected violation %q: %s", res.Violation, res.Message)
				return
			}
			require.False(t, res.OK)
			assert.Equal(t, tt.wantViolation, res.Violation)
			assert.Contains(t, res.Message, tt.wantInMessage)
		})
	}
}

func TestValidateSelection_MinOrderCarriesRequiredAmount(t *testing.T) {
	gated := RegularCoupon{ID: "c2", Name: "MIN300", Kind: KindFixed, Value: d("40"), MinOrderAmount: d("300")}
	res := ValidateSelection(Selection{Regular: &gated}, d("250"), nil)

	require.False(t, res.OK)
	require.Equal(t, ViolationMinOrderNotMet, res.Violation)
	assert.True(t, d("300").Equal(res.RequiredMin))
}

func TestValidateSelection_DuplicateChecksRunAfterAvailability(t *testing.T) {
	// Both coupons target a dish that is no longer on the order; the
	// availability violation is reported first.
	gone := DishCoupon{ID: "d1", Code: "A", DishName: "Momos", Percent: d("10")}
	goneAlt := DishCoupon{ID: "d2", Code: "B", DishName: "momos", Percent: d("20")}
	items := []LineItem{{Name: "Biryani", Price: d("180"), Quantity: 1}}

	res := ValidateSelection(Selection{Dishes: []DishCoupon{gone, goneAlt}}, d("180"), items)
	require.False(t, res.OK)
	assert.Equal(t, ViolationDishUnavailable, res.Violation)
	assert.Equal(t, "Momos", res.Dish)
}
