package api

import (
	"net/http"

	"github.com/go-faster/jx"
)

// GetOrderCoupons returns the order's frozen coupon aggregate with the
// re-derived discount breakdown and final total.
func (h *Handler) GetOrderCoupons(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrderDiscounts(e, o)
	writeJSON(w, http.StatusOK, e)
}

// ApplyCoupons validates the submitted selection against the order's current
// items, freezes the discounts, and replaces the order's coupon aggregate
// wholesale. Validation failures come back as 422 with the violation detail.
func (h *Handler) ApplyCoupons(w http.ResponseWriter, r *http.Request) {
	ref, err := decodeSelectionRef(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed selection")
		return
	}

	o, err := h.orders.ApplyCoupons(r.Context(), r.PathValue("orderID"), ref)
	if err != nil {
		respondError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrderDiscounts(e, o)
	writeJSON(w, http.StatusOK, e)
}

// RemoveCoupons clears all coupons from the order, restoring the
// undiscounted total.
func (h *Handler) RemoveCoupons(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.RemoveCoupons(r.Context(), r.PathValue("orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrderDiscounts(e, o)
	writeJSON(w, http.StatusOK, e)
}

// ApplicableDishCoupons narrows the dish coupon catalog for the order given
// the tentative selection in the request body. The terminal calls this after
// every toggle so the picker never offers a combination that would fail the
// commit-time validation.
func (h *Handler) ApplicableDishCoupons(w http.ResponseWriter, r *http.Request) {
	ref, err := decodeSelectionRef(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed selection")
		return
	}

	applicable, err := h.orders.ApplicableDishCoupons(r.Context(), r.PathValue("orderID"), ref)
	if err != nil {
		respondError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for _, dc := range applicable {
		encodeDishCoupon(e, dc)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}
