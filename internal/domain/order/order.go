// Package order is the order-management collaborator of the coupon engine:
// it owns the in-progress order document, supplies the engine with the
// already-computed subtotal and line items, and persists the frozen coupon
// aggregate the engine produces.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
)

// Status is the lifecycle state of an order document.
type Status string

const (
	StatusOpen    Status = "open"
	StatusSettled Status = "settled"
)

// ErrOrderNotFound is returned when the referenced order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrOrderSettled is returned when coupons are applied to or removed from an
// order that has already been settled.
var ErrOrderSettled = errors.New("order already settled")

// CouponNotFoundError indicates a selection referenced a coupon that is not
// in the location's catalog.
type CouponNotFoundError struct {
	CouponID string
}

func (e *CouponNotFoundError) Error() string {
	return fmt.Sprintf("coupon %s not found in location catalog", e.CouponID)
}

// ValidationError carries a failed combination validation across the service
// boundary. It wraps a validation outcome, not a fault: handlers render it
// inline rather than treating it as a server error.
type ValidationError struct {
	Result coupon.Result
}

func (e *ValidationError) Error() string {
	return e.Result.Message
}

// Order is an in-progress or settled order document. Coupons holds the frozen
// aggregate; Discounts and Total are derived from it at apply time and stored
// alongside so receipt rendering needs no recomputation.
type Order struct {
	ID         string
	LocationID string
	TableName  string
	Status     Status
	Items      []coupon.LineItem
	Coupons    coupon.OrderCoupons
	Discounts  decimal.Decimal
	Total      decimal.Decimal
	CreatedAt  time.Time
}

// Subtotal returns the pre-discount, pre-tax sum of the order's line items.
// The coupon engine never computes this itself; it is supplied from here.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.ExtendedPrice())
	}
	return sum
}

// Repository defines persistence operations for order documents.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	// UpdateCoupons replaces the order's coupon aggregate, discount total,
	// and order total wholesale.
	UpdateCoupons(ctx context.Context, o *Order) error
}
