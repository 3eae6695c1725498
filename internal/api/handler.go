// Package api exposes the coupon engine to POS terminals over JSON/HTTP.
package api

import (
	"net/http"

	"github.com/zestpos/coupon-service/internal/domain/coupon"
	"github.com/zestpos/coupon-service/internal/domain/order"
)

// Handler serves the coupon catalog and order-coupon endpoints, delegating
// business logic to the order service and catalog repository.
type Handler struct {
	catalog coupon.Repository
	orders  *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(catalog coupon.Repository, orders *order.Service) *Handler {
	return &Handler{
		catalog: catalog,
		orders:  orders,
	}
}

// Routes returns the API route table. Paths are relative to the /api prefix
// the caller mounts them under.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /locations/{locationID}/coupons", h.ListRegularCoupons)
	mux.HandleFunc("GET /locations/{locationID}/dish-coupons", h.ListDishCoupons)

	mux.HandleFunc("GET /orders/{orderID}/coupons", h.GetOrderCoupons)
	mux.HandleFunc("POST /orders/{orderID}/coupons", h.ApplyCoupons)
	mux.HandleFunc("DELETE /orders/{orderID}/coupons", h.RemoveCoupons)
	mux.HandleFunc("POST /orders/{orderID}/coupons/applicable", h.ApplicableDishCoupons)

	return mux
}
