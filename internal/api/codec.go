package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
	"github.com/zestpos/coupon-service/internal/domain/order"
)

// decodeBufSize bounds the decoder's read buffer for request bodies.
const decodeBufSize = 4096

// writeJSON renders the encoder's buffer with the given status code.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// num writes a decimal as a bare JSON number. shopspring decimals render as
// plain decimal strings, which are valid JSON number tokens.
func num(e *jx.Encoder, v decimal.Decimal) {
	e.RawStr(v.String())
}

func encodeRegularCoupon(e *jx.Encoder, c coupon.RegularCoupon) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("kind")
	e.Str(string(c.Kind))
	e.FieldStart("value")
	num(e, c.Value)
	if c.MinOrderAmount.IsPositive() {
		e.FieldStart("minOrderAmount")
		num(e, c.MinOrderAmount)
	}
	if c.MaxDiscount.IsPositive() {
		e.FieldStart("maxDiscountAmount")
		num(e, c.MaxDiscount)
	}
	if c.Description != "" {
		e.FieldStart("description")
		e.Str(c.Description)
	}
	e.ObjEnd()
}

func encodeDishCoupon(e *jx.Encoder, dc coupon.DishCoupon) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(dc.ID)
	e.FieldStart("couponCode")
	e.Str(dc.Code)
	e.FieldStart("dishName")
	e.Str(dc.DishName)
	e.FieldStart("discountPercentage")
	num(e, dc.Percent)
	e.ObjEnd()
}

func encodeOrderCoupons(e *jx.Encoder, oc coupon.OrderCoupons) {
	e.ObjStart()
	if oc.Regular != nil {
		e.FieldStart("regularCoupon")
		e.ObjStart()
		e.FieldStart("couponId")
		e.Str(oc.Regular.CouponID)
		e.FieldStart("name")
		e.Str(oc.Regular.Name)
		e.FieldStart("kind")
		e.Str(string(oc.Regular.Kind))
		e.FieldStart("discountAmount")
		num(e, oc.Regular.DiscountAmount)
		e.ObjEnd()
	}
	e.FieldStart("dishCoupons")
	e.ArrStart()
	for _, dc := range oc.Dishes {
		e.ObjStart()
		e.FieldStart("couponId")
		e.Str(dc.CouponID)
		e.FieldStart("dishName")
		e.Str(dc.DishName)
		e.FieldStart("discountAmount")
		num(e, dc.DiscountAmount)
		e.FieldStart("matchedItemCount")
		e.Int(dc.MatchedItemCount)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

// encodeOrderDiscounts renders the order's frozen coupon state together with
// the re-derived discount breakdown and final total.
func encodeOrderDiscounts(e *jx.Encoder, o *order.Order) {
	total, breakdown := coupon.TotalDiscount(o.Coupons)

	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.ID)
	e.FieldStart("subtotal")
	num(e, o.Subtotal().Round(2))
	e.FieldStart("totalDiscount")
	num(e, total.Round(2))
	e.FieldStart("breakdown")
	e.ObjStart()
	e.FieldStart("regular")
	num(e, breakdown.Regular)
	e.FieldStart("dish")
	num(e, breakdown.Dish)
	e.ObjEnd()
	e.FieldStart("total")
	num(e, o.Total)
	e.FieldStart("coupons")
	encodeOrderCoupons(e, o.Coupons)
	e.ObjEnd()
}

// decodeSelectionRef parses an apply/applicable request body:
//
//	{"regularCouponId": "...", "dishCouponIds": ["...", ...]}
//
// Both fields are optional; unknown fields are skipped.
func decodeSelectionRef(r *http.Request) (order.SelectionRef, error) {
	var ref order.SelectionRef

	d := jx.Decode(r.Body, decodeBufSize)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "regularCouponId":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "regularCouponId")
			}
			ref.RegularCouponID = v
			return nil
		case "dishCouponIds":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "dishCouponIds")
				}
				ref.DishCouponIDs = append(ref.DishCouponIDs, v)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return order.SelectionRef{}, errors.Wrap(err, "decode selection")
	}

	return ref, nil
}
