// Package refund validates refund requests against an order's financial state
// and maintains the append-only refund status history.
//
// Amounts are decimal major currency units (dollars) everywhere.
package refund

import (
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the currency comparison epsilon.
var DefaultTolerance = decimal.RequireFromString("0.01")

// RefundableRemaining returns orderTotal minus priorRefundedSum, floored at zero.
func RefundableRemaining(orderTotal, priorRefundedSum decimal.Decimal) decimal.Decimal {
	remaining := orderTotal.Sub(priorRefundedSum)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// PriorRefundedSum sums the amounts of all non-rejected refunds, skipping
// excludeID (0 skips nothing). Used when revalidating an edited refund.
func PriorRefundedSum(refunds []model.Refund, excludeID uint) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range refunds {
		if r.Status == model.RefundStatusRejected {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		sum = sum.Add(r.Amount)
	}
	return sum
}

// HasActiveRefunds reports whether any refund other than excludeID is not rejected.
func HasActiveRefunds(refunds []model.Refund, excludeID uint) bool {
	for _, r := range refunds {
		if r.ID != excludeID && r.Status != model.RefundStatusRejected {
			return true
		}
	}
	return false
}

var transitions = map[model.RefundStatus][]model.RefundStatus{
	"":                         {model.RefundStatusPending},
	model.RefundStatusPending:  {model.RefundStatusApproved, model.RefundStatusRejected},
	model.RefundStatusApproved: {model.RefundStatusCompleted, model.RefundStatusRejected},
}

// CanTransition reports whether a refund may move from one status to another.
// Rejected and completed are terminal.
func CanTransition(from, to model.RefundStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Reconciler holds the comparison tolerance and clock used for validation
// and history stamping.
type Reconciler struct {
	tolerance decimal.Decimal
	now       func() time.Time
}

// NewReconciler returns a Reconciler. A zero or negative tolerance falls back
// to DefaultTolerance.
func NewReconciler(tolerance decimal.Decimal) *Reconciler {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return &Reconciler{tolerance: tolerance, now: time.Now}
}

// WithClock replaces the clock, for tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Tolerance returns the comparison epsilon in use.
func (r *Reconciler) Tolerance() decimal.Decimal {
	return r.tolerance
}

// ValidateNewRefund checks a requested refund against the order and the sum of
// its prior non-rejected refunds. It returns the amount to persist: the exact
// remaining balance for a full refund, the requested amount rounded to cents
// for a partial one.
func (r *Reconciler) ValidateNewRefund(order *model.Order, prior decimal.Decimal, refundType model.RefundType, amount decimal.Decimal) (decimal.Decimal, error) {
	remaining := RefundableRemaining(order.TotalAmount, prior)

	switch refundType {
	case model.RefundTypeFull:
		if order.Status == model.OrderStatusPartialRefunded || prior.IsPositive() {
			return decimal.Zero, newValidationError(CodeFullAfterPartial,
				"cannot select full refund for partially refunded order")
		}
		if amount.Sub(remaining).Abs().GreaterThan(r.tolerance) {
			return decimal.Zero, newValidationError(CodeAmountMismatch,
				"full refund amount must equal the refundable remaining %s, got %s",
				remaining.StringFixed(2), amount.StringFixed(2))
		}
		return remaining.Round(2), nil

	case model.RefundTypePartial:
		if amount.IsNegative() {
			return decimal.Zero, newValidationError(CodeNegativeAmount,
				"refund amount must not be negative, got %s", amount.StringFixed(2))
		}
		limit := remaining.Sub(r.tolerance)
		if amount.GreaterThan(limit) {
			return decimal.Zero, newValidationError(CodeAmountExceeds,
				"partial refund amount must be less than the refundable remaining %s, got %s",
				remaining.StringFixed(2), amount.StringFixed(2))
		}
		return amount.Round(2), nil

	default:
		return decimal.Zero, newValidationError(CodeInvalidType,
			"refund type must be %q or %q, got %q", model.RefundTypeFull, model.RefundTypePartial, refundType)
	}
}

// AppendStatusHistory moves refund to status and appends the matching history
// entry. Earlier entries are never touched. The appended entry is returned so
// callers can persist it on its own.
func (r *Reconciler) AppendStatusHistory(refund *model.Refund, status model.RefundStatus, note, actor string) (model.RefundStatusHistory, error) {
	if !CanTransition(refund.Status, status) {
		from := string(refund.Status)
		if from == "" {
			from = "new"
		}
		return model.RefundStatusHistory{}, newValidationError(CodeInvalidTransition,
			"cannot change refund status from %s to %s", from, status)
	}

	now := r.now()
	entry := model.RefundStatusHistory{
		RefundID:  refund.ID,
		Status:    status,
		Note:      note,
		UpdatedBy: actor,
		Timestamp: now,
	}
	refund.Status = status
	refund.StatusHistory = append(refund.StatusHistory, entry)
	if status == model.RefundStatusCompleted {
		refund.CompletedAt = &now
	}
	return entry, nil
}

// ValidateMethod rejects unknown refund methods.
func ValidateMethod(m model.RefundMethod) error {
	if !m.IsValid() {
		return newValidationError(CodeInvalidMethod, "unknown refund method %q", m)
	}
	return nil
}

// ApplyOrderStatus sets the order status implied by its refunds. Any active
// full refund makes the order refunded; other active refunds make it
// partial_refunded. The first refund remembers the prior status in
// PreRefundStatus, and the order returns to it once no active refunds remain.
// It reports whether the order changed.
func ApplyOrderStatus(order *model.Order, refunds []model.Refund) bool {
	status, pre := order.Status, order.PreRefundStatus

	var active, full bool
	for _, r := range refunds {
		if r.Status == model.RefundStatusRejected {
			continue
		}
		active = true
		if r.RefundType == model.RefundTypeFull {
			full = true
		}
	}

	switch {
	case !active:
		if order.PreRefundStatus != "" {
			order.Status = order.PreRefundStatus
			order.PreRefundStatus = ""
		}
	default:
		if order.PreRefundStatus == "" && !IsRefundStatus(order.Status) {
			order.PreRefundStatus = order.Status
		}
		order.Status = model.OrderStatusPartialRefunded
		if full {
			order.Status = model.OrderStatusRefunded
		}
	}
	return order.Status != status || order.PreRefundStatus != pre
}

// IsRefundStatus reports whether s is one of the statuses owned by refunds.
func IsRefundStatus(s model.OrderStatus) bool {
	return s == model.OrderStatusPartialRefunded || s == model.OrderStatusRefunded
}
