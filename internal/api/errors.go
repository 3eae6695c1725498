package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/zestpos/coupon-service/internal/domain/order"
)

// writeError renders a plain error response.
func writeError(w http.ResponseWriter, status int, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e)
}

// writeValidationError renders a failed combination validation as 422 with
// the violation code and any violation-specific detail, so the terminal UI
// can show the message inline next to the coupon picker.
func writeValidationError(w http.ResponseWriter, vErr *order.ValidationError) {
	res := vErr.Result

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(http.StatusUnprocessableEntity)
	e.FieldStart("violation")
	e.Str(string(res.Violation))
	e.FieldStart("message")
	e.Str(res.Message)
	if res.Dish != "" {
		e.FieldStart("dish")
		e.Str(res.Dish)
	}
	if res.RequiredMin.IsPositive() {
		e.FieldStart("requiredMinOrderAmount")
		num(e, res.RequiredMin)
	}
	e.ObjEnd()
	writeJSON(w, http.StatusUnprocessableEntity, e)
}

// respondError maps service errors to HTTP responses. Validation outcomes
// and bad references render as client errors; anything else is a server
// fault that is logged and hidden behind a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeValidationError(w, vErr)
		return
	}

	var cnfErr *order.CouponNotFoundError
	if errors.As(err, &cnfErr) {
		writeError(w, http.StatusUnprocessableEntity, cnfErr.Error())
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrOrderSettled):
		writeError(w, http.StatusConflict, "order already settled")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
