// Package coupon implements the discount resolution engine: given an order's
// line items and the promotional catalog of a location, it decides which
// coupons may legally be combined, computes the discount each contributes,
// and freezes the result into an immutable record attached to the order.
//
// All functions in this package are pure and allocate fresh output; they are
// safe to call concurrently. The only I/O boundary is the catalog Repository.
package coupon

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind enumerates the supported regular coupon discount shapes.
type DiscountKind string

const (
	// KindFixed subtracts a fixed monetary amount, capped at the subtotal.
	KindFixed DiscountKind = "fixed"
	// KindPercentage subtracts a percentage of the subtotal, optionally capped.
	KindPercentage DiscountKind = "percentage"
)

// RegularCoupon is an order-level promotion applying to the whole subtotal.
// It is immutable once fetched from the catalog.
type RegularCoupon struct {
	ID   string
	Name string
	Kind DiscountKind
	// Value is a currency amount for KindFixed, or 0-100 for KindPercentage.
	Value decimal.Decimal
	// MinOrderAmount gates the coupon: a subtotal below it yields no discount.
	// Zero means no minimum.
	MinOrderAmount decimal.Decimal
	// MaxDiscount caps a percentage discount. Zero means no cap.
	MaxDiscount decimal.Decimal
	Description string
}

// DishCoupon is a promotion tied to a specific menu item name, discounting
// only the extended price of matching line items.
type DishCoupon struct {
	ID       string
	Code     string
	DishName string
	// Percent is the discount percentage, 0-100.
	Percent decimal.Decimal
}

// PortionSize identifies the serving size of a line item.
type PortionSize string

const (
	PortionHalf PortionSize = "half"
	PortionFull PortionSize = "full"
)

// LineItem is a read-only order line as supplied by the order collaborator.
// Price is the unit price.
type LineItem struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Modifications []string        `json:"modifications,omitempty"`
	PortionSize   PortionSize     `json:"portionSize,omitempty"`
}

// ExtendedPrice returns price * quantity for the line.
func (it LineItem) ExtendedPrice() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// NormalizeDishName canonicalizes a dish name for matching: names are
// compared case-insensitively after trimming surrounding whitespace.
func NormalizeDishName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Repository provides the promotional catalog of a location. The catalog is
// fetched once per selection session and treated as an immutable snapshot;
// staleness is mitigated by commit-time re-validation.
type Repository interface {
	ListRegular(ctx context.Context, locationID string) ([]RegularCoupon, error)
	ListDish(ctx context.Context, locationID string) ([]DishCoupon, error)
}
