package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
)

// --- Mock implementations ---

type mockCatalogRepo struct {
	regulars []coupon.RegularCoupon
	dishes   []coupon.DishCoupon
	err      error
}

func (m *mockCatalogRepo) ListRegular(_ context.Context, _ string) ([]coupon.RegularCoupon, error) {
	return m.regulars, m.err
}

func (m *mockCatalogRepo) ListDish(_ context.Context, _ string) ([]coupon.DishCoupon, error) {
	return m.dishes, m.err
}

type mockOrderRepo struct {
	order     *Order
	getErr    error
	updateErr error
	updated   *Order
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.order == nil || m.order.ID != id {
		return nil, ErrOrderNotFound
	}
	cp := *m.order
	return &cp, nil
}

func (m *mockOrderRepo) UpdateCoupons(_ context.Context, o *Order) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = o
	return nil
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testOrder() *Order {
	return &Order{
		ID:         "o1",
		LocationID: "loc1",
		TableName:  "T4",
		Status:     StatusOpen,
		Items: []coupon.LineItem{
			{Name: "Biryani", Price: d("180"), Quantity: 2},
			{Name: "Fried Rice", Price: d("150"), Quantity: 1},
		},
	}
}

func testCatalog() *mockCatalogRepo {
	return &mockCatalogRepo{
		regulars: []coupon.RegularCoupon{
			{ID: "c1", Name: "FLAT50", Kind: coupon.KindFixed, Value: d("50")},
			{ID: "c2", Name: "MIN900", Kind: coupon.KindFixed, Value: d("100"), MinOrderAmount: d("900")},
		},
		dishes: []coupon.DishCoupon{
			{ID: "d1", Code: "BIR20", DishName: "Biryani", Percent: d("20")},
			{ID: "d2", Code: "FR15", DishName: "Fried Rice", Percent: d("15")},
			{ID: "d3", Code: "MOMO5", DishName: "Momos", Percent: d("5")},
		},
	}
}

func TestService_ApplyCoupons(t *testing.T) {
	t.Run("regular plus dish coupons are frozen and persisted", func(t *testing.T) {
		orders := &mockOrderRepo{order: testOrder()}
		svc := NewService(testCatalog(), orders)

		got, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{
			RegularCouponID: "c1",
			DishCouponIDs:   []string{"d1", "d2"},
		})
		require.NoError(t, err)
		require.NotNil(t, orders.updated)

		// Subtotal 510; discounts 50 + 72 + 22.50 = 144.50.
		assert.True(t, d("144.50").Equal(got.Discounts), "got %s", got.Discounts)
		assert.True(t, d("365.50").Equal(got.Total), "got %s", got.Total)
		require.NotNil(t, got.Coupons.Regular)
		assert.Len(t, got.Coupons.Dishes, 2)
	})

	t.Run("validation failure returns ValidationError and persists nothing", func(t *testing.T) {
		orders := &mockOrderRepo{order: testOrder()}
		svc := NewService(testCatalog(), orders)

		_, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{
			DishCouponIDs: []string{"d3"}, // Momos is not on the order
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, coupon.ViolationDishUnavailable, vErr.Result.Violation)
		assert.Nil(t, orders.updated)
	})

	t.Run("min order violation names the required amount", func(t *testing.T) {
		orders := &mockOrderRepo{order: testOrder()}
		svc := NewService(testCatalog(), orders)

		_, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{RegularCouponID: "c2"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, coupon.ViolationMinOrderNotMet, vErr.Result.Violation)
		assert.True(t, d("900").Equal(vErr.Result.RequiredMin))
	})

	t.Run("empty selection is rejected", func(t *testing.T) {
		orders := &mockOrderRepo{order: testOrder()}
		svc := NewService(testCatalog(), orders)

		_, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, coupon.ViolationNoSelection, vErr.Result.Violation)
	})

	t.Run("unknown coupon ID", func(t *testing.T) {
		orders := &mockOrderRepo{order: testOrder()}
		svc := NewService(testCatalog(), orders)

		_, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{RegularCouponID: "nope"})
		var cnf *CouponNotFoundError
		require.ErrorAs(t, err, &cnf)
		assert.Equal(t, "nope", cnf.CouponID)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := NewService(testCatalog(), &mockOrderRepo{})
		_, err := svc.ApplyCoupons(context.Background(), "missing", SelectionRef{RegularCouponID: "c1"})
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("settled order rejects apply", func(t *testing.T) {
		o := testOrder()
		o.Status = StatusSettled
		svc := NewService(testCatalog(), &mockOrderRepo{order: o})

		_, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{RegularCouponID: "c1"})
		assert.ErrorIs(t, err, ErrOrderSettled)
	})

	t.Run("re-apply replaces the aggregate wholesale", func(t *testing.T) {
		o := testOrder()
		o.Coupons = coupon.OrderCoupons{
			Dishes: []coupon.AppliedDishCoupon{
				{CouponID: "d2", DishName: "Fried Rice", DiscountAmount: d("22.50"), MatchedItemCount: 1},
			},
		}
		orders := &mockOrderRepo{order: o}
		svc := NewService(testCatalog(), orders)

		got, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{RegularCouponID: "c1"})
		require.NoError(t, err)
		// The previously applied dish coupon is gone, not merged.
		assert.Empty(t, got.Coupons.Dishes)
		require.NotNil(t, got.Coupons.Regular)
	})

	t.Run("catalog fetch failure surfaces as error, not validation outcome", func(t *testing.T) {
		catalog := testCatalog()
		catalog.err = errors.New("connection refused")
		svc := NewService(catalog, &mockOrderRepo{order: testOrder()})

		_, err := svc.ApplyCoupons(context.Background(), "o1", SelectionRef{RegularCouponID: "c1"})
		require.Error(t, err)
		var vErr *ValidationError
		assert.False(t, errors.As(err, &vErr))
	})
}

func TestService_RemoveCoupons(t *testing.T) {
	o := testOrder()
	o.Coupons = coupon.OrderCoupons{
		Regular: &coupon.AppliedRegularCoupon{CouponID: "c1", Name: "FLAT50", Kind: coupon.KindFixed, DiscountAmount: d("50")},
	}
	o.Discounts = d("50")
	o.Total = d("460")

	orders := &mockOrderRepo{order: o}
	svc := NewService(testCatalog(), orders)

	got, err := svc.RemoveCoupons(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, got.Coupons.Empty())
	assert.True(t, got.Discounts.IsZero())
	assert.True(t, d("510").Equal(got.Total))
	require.NotNil(t, orders.updated)
}

func TestService_ApplicableDishCoupons(t *testing.T) {
	orders := &mockOrderRepo{order: testOrder()}
	svc := NewService(testCatalog(), orders)

	t.Run("no selection drops unmatched dishes only", func(t *testing.T) {
		got, err := svc.ApplicableDishCoupons(context.Background(), "o1", SelectionRef{})
		require.NoError(t, err)
		ids := make([]string, len(got))
		for i, dc := range got {
			ids[i] = dc.ID
		}
		assert.Equal(t, []string{"d1", "d2"}, ids)
	})

	t.Run("selected coupon stays visible, rivals for its dish are hidden", func(t *testing.T) {
		got, err := svc.ApplicableDishCoupons(context.Background(), "o1", SelectionRef{
			DishCouponIDs: []string{"d1"},
		})
		require.NoError(t, err)
		ids := make([]string, len(got))
		for i, dc := range got {
			ids[i] = dc.ID
		}
		assert.Equal(t, []string{"d1", "d2"}, ids)
	})

	t.Run("unknown selected coupon", func(t *testing.T) {
		_, err := svc.ApplicableDishCoupons(context.Background(), "o1", SelectionRef{
			DishCouponIDs: []string{"ghost"},
		})
		var cnf *CouponNotFoundError
		assert.ErrorAs(t, err, &cnf)
	})
}

func TestOrderSubtotal(t *testing.T) {
	o := testOrder()
	assert.True(t, d("510").Equal(o.Subtotal()))

	empty := &Order{}
	assert.True(t, empty.Subtotal().IsZero())
}
