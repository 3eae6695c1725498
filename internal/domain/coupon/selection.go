package coupon

import "github.com/shopspring/decimal"

// Selection is the tentative coupon choice within one picker session: at most
// one regular coupon plus any number of dish coupons. Selections are values;
// every mutator returns a fresh copy and never aliases the receiver's slice,
// so the caller can keep old states around (e.g. to restore after a failed
// validation).
type Selection struct {
	Regular *RegularCoupon
	Dishes  []DishCoupon
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.Regular == nil && len(s.Dishes) == 0
}

// WithRegular returns a copy of the selection with the regular coupon set.
func (s Selection) WithRegular(c RegularCoupon) Selection {
	return Selection{Regular: &c, Dishes: cloneDishes(s.Dishes)}
}

// WithoutRegular returns a copy of the selection with no regular coupon.
func (s Selection) WithoutRegular() Selection {
	return Selection{Dishes: cloneDishes(s.Dishes)}
}

// ToggleDish returns a copy with the dish coupon removed if it is already
// selected (matched by ID), or appended otherwise.
func (s Selection) ToggleDish(dc DishCoupon) Selection {
	out := Selection{Regular: s.Regular}
	removed := false
	for _, cur := range s.Dishes {
		if cur.ID == dc.ID {
			removed = true
			continue
		}
		out.Dishes = append(out.Dishes, cur)
	}
	if !removed {
		out.Dishes = append(out.Dishes, dc)
	}
	return out
}

// Clear returns an empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}

func cloneDishes(dishes []DishCoupon) []DishCoupon {
	if len(dishes) == 0 {
		return nil
	}
	out := make([]DishCoupon, len(dishes))
	copy(out, dishes)
	return out
}

// Phase is the state of a coupon picker session.
type Phase string

const (
	// PhaseIdle: no session activity, nothing selected.
	PhaseIdle Phase = "idle"
	// PhaseSelecting: the user is toggling coupons.
	PhaseSelecting Phase = "selecting"
	// PhaseApplied: the selection was validated and frozen. Terminal for the
	// session; reopening the picker starts a new session from Idle.
	PhaseApplied Phase = "applied"
)

// Session models one coupon picker interaction:
// Idle -> Selecting (toggles) -> Applied (confirm succeeded), with failed
// confirms staying in Selecting and surfacing the validation result.
// Sessions are values; transitions return fresh copies.
type Session struct {
	Phase     Phase
	Selection Selection
	// Applied holds the frozen aggregate once the session reaches PhaseApplied.
	Applied OrderCoupons
	// LastResult is the outcome of the most recent Confirm.
	LastResult Result
}

// NewSession starts an idle session with nothing selected.
func NewSession() Session {
	return Session{Phase: PhaseIdle}
}

// SetRegular transitions to Selecting with the regular coupon set.
func (s Session) SetRegular(c RegularCoupon) Session {
	return Session{Phase: PhaseSelecting, Selection: s.Selection.WithRegular(c)}
}

// ClearRegular transitions to Selecting with the regular coupon removed.
func (s Session) ClearRegular() Session {
	return Session{Phase: PhaseSelecting, Selection: s.Selection.WithoutRegular()}
}

// ToggleDish transitions to Selecting with the dish coupon toggled.
func (s Session) ToggleDish(dc DishCoupon) Session {
	return Session{Phase: PhaseSelecting, Selection: s.Selection.ToggleDish(dc)}
}

// Confirm validates the whole selection and, on success, freezes it into an
// applied aggregate and moves to PhaseApplied. On failure the session stays
// in PhaseSelecting with the selection unchanged and the result surfaced in
// LastResult.
func (s Session) Confirm(subtotal decimal.Decimal, items []LineItem) Session {
	oc, res := Build(s.Selection, subtotal, items)
	if !res.OK {
		return Session{Phase: PhaseSelecting, Selection: s.Selection, LastResult: res}
	}
	return Session{Phase: PhaseApplied, Selection: s.Selection, Applied: oc, LastResult: res}
}

// RemoveAll discards the selection and any applied coupons, returning the
// session to Idle.
func (s Session) RemoveAll() Session {
	return NewSession()
}
