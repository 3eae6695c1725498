package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ListRegularCoupons returns the active order-level coupons of a location,
// in catalog order.
func (h *Handler) ListRegularCoupons(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationID")

	catalog, err := h.catalog.ListRegular(r.Context(), locationID)
	if err != nil {
		zctx.From(r.Context()).Error("list regular coupons", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for _, c := range catalog {
		encodeRegularCoupon(e, c)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

// ListDishCoupons returns the active dish coupons of a location, in catalog
// order.
func (h *Handler) ListDishCoupons(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationID")

	catalog, err := h.catalog.ListDish(r.Context(), locationID)
	if err != nil {
		zctx.From(r.Context()).Error("list dish coupons", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for _, dc := range catalog {
		encodeDishCoupon(e, dc)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}
