package refund

import (
	"testing"
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, code, ve.Code)
}

func TestRefundableRemaining(t *testing.T) {
	assert.True(t, d("60").Equal(RefundableRemaining(d("100"), d("40"))))
	assert.True(t, decimal.Zero.Equal(RefundableRemaining(d("100"), d("120"))))
	assert.True(t, d("100").Equal(RefundableRemaining(d("100"), decimal.Zero)))
}

func TestPriorRefundedSum(t *testing.T) {
	refunds := []model.Refund{
		{ID: 1, Amount: d("10.00"), Status: model.RefundStatusCompleted},
		{ID: 2, Amount: d("20.00"), Status: model.RefundStatusRejected},
		{ID: 3, Amount: d("5.50"), Status: model.RefundStatusPending},
	}
	assert.Equal(t, "15.50", PriorRefundedSum(refunds, 0).StringFixed(2))
	assert.Equal(t, "10.00", PriorRefundedSum(refunds, 3).StringFixed(2))

	assert.True(t, HasActiveRefunds(refunds, 0))
	assert.True(t, HasActiveRefunds(refunds, 3))
	assert.False(t, HasActiveRefunds(refunds[1:2], 0))
}

func TestValidateNewRefund(t *testing.T) {
	r := NewReconciler(decimal.Zero)
	paid := &model.Order{TotalAmount: d("100.00"), Status: model.OrderStatusPaid}
	partial := &model.Order{TotalAmount: d("100.00"), Status: model.OrderStatusPartialRefunded}

	tests := []struct {
		name     string
		order    *model.Order
		prior    string
		typ      model.RefundType
		amount   string
		want     string
		wantCode string
	}{
		{name: "Full refund of total", order: paid, prior: "0", typ: model.RefundTypeFull, amount: "100.00", want: "100.00"},
		{name: "Full refund within tolerance", order: paid, prior: "0", typ: model.RefundTypeFull, amount: "99.995", want: "100.00"},
		{name: "Full refund mismatch", order: paid, prior: "0", typ: model.RefundTypeFull, amount: "95.00", wantCode: CodeAmountMismatch},
		{name: "Full refund on partially refunded order", order: partial, prior: "40", typ: model.RefundTypeFull, amount: "60.00", wantCode: CodeFullAfterPartial},
		{name: "Full refund with prior pending refund", order: paid, prior: "40", typ: model.RefundTypeFull, amount: "60.00", wantCode: CodeFullAfterPartial},
		{name: "Partial refund", order: paid, prior: "0", typ: model.RefundTypePartial, amount: "40", want: "40.00"},
		{name: "Partial refund rounds to cents", order: paid, prior: "0", typ: model.RefundTypePartial, amount: "12.345", want: "12.35"},
		{name: "Partial refund of zero", order: paid, prior: "0", typ: model.RefundTypePartial, amount: "0", want: "0.00"},
		{name: "Partial refund equal to remaining", order: partial, prior: "40", typ: model.RefundTypePartial, amount: "60.00", wantCode: CodeAmountExceeds},
		{name: "Partial refund one cent below remaining", order: partial, prior: "40", typ: model.RefundTypePartial, amount: "59.99", want: "59.99"},
		{name: "Partial refund above remaining", order: partial, prior: "40", typ: model.RefundTypePartial, amount: "75.00", wantCode: CodeAmountExceeds},
		{name: "Negative partial refund", order: paid, prior: "0", typ: model.RefundTypePartial, amount: "-1", wantCode: CodeNegativeAmount},
		{name: "Unknown type", order: paid, prior: "0", typ: "store_credit", amount: "10", wantCode: CodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ValidateNewRefund(tt.order, d(tt.prior), tt.typ, d(tt.amount))
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestValidateNewRefund_MessagesNameAmounts(t *testing.T) {
	r := NewReconciler(DefaultTolerance)
	order := &model.Order{TotalAmount: d("100.00"), Status: model.OrderStatusPaid}

	_, err := r.ValidateNewRefund(order, decimal.Zero, model.RefundTypeFull, d("95"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100.00")

	order.Status = model.OrderStatusPartialRefunded
	_, err = r.ValidateNewRefund(order, d("40"), model.RefundTypePartial, d("60"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "60.00")

	_, err = r.ValidateNewRefund(order, d("40"), model.RefundTypeFull, d("60"))
	require.Error(t, err)
	assert.Equal(t, "cannot select full refund for partially refunded order", err.Error())
}

// Order of $100: partial 40 ok, full 60 rejected, partial 60 rejected, partial 59.99 ok.
func TestValidateNewRefund_Scenario(t *testing.T) {
	r := NewReconciler(DefaultTolerance)
	order := &model.Order{TotalAmount: d("100.00"), Status: model.OrderStatusDelivered}
	var refunds []model.Refund

	amount, err := r.ValidateNewRefund(order, PriorRefundedSum(refunds, 0), model.RefundTypePartial, d("40.00"))
	require.NoError(t, err)
	refunds = append(refunds, model.Refund{ID: 1, Amount: amount, Status: model.RefundStatusPending})
	order.Status = model.OrderStatusPartialRefunded
	assert.Equal(t, "60.00", RefundableRemaining(order.TotalAmount, PriorRefundedSum(refunds, 0)).StringFixed(2))

	_, err = r.ValidateNewRefund(order, PriorRefundedSum(refunds, 0), model.RefundTypeFull, d("60.00"))
	requireCode(t, err, CodeFullAfterPartial)

	_, err = r.ValidateNewRefund(order, PriorRefundedSum(refunds, 0), model.RefundTypePartial, d("60.00"))
	requireCode(t, err, CodeAmountExceeds)

	amount, err = r.ValidateNewRefund(order, PriorRefundedSum(refunds, 0), model.RefundTypePartial, d("59.99"))
	require.NoError(t, err)
	assert.Equal(t, "59.99", amount.StringFixed(2))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.RefundStatus
		want     bool
	}{
		{"", model.RefundStatusPending, true},
		{"", model.RefundStatusApproved, false},
		{model.RefundStatusPending, model.RefundStatusApproved, true},
		{model.RefundStatusPending, model.RefundStatusRejected, true},
		{model.RefundStatusPending, model.RefundStatusCompleted, false},
		{model.RefundStatusApproved, model.RefundStatusCompleted, true},
		{model.RefundStatusApproved, model.RefundStatusRejected, true},
		{model.RefundStatusRejected, model.RefundStatusPending, false},
		{model.RefundStatusCompleted, model.RefundStatusRejected, false},
		{model.RefundStatusPending, model.RefundStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%q -> %q", tt.from, tt.to)
	}
}

func TestAppendStatusHistory(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewReconciler(DefaultTolerance).WithClock(func() time.Time { return clock })
	refund := &model.Refund{ID: 7, Amount: d("10")}

	entry, err := r.AppendStatusHistory(refund, model.RefundStatusPending, "requested", "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(7), entry.RefundID)
	assert.Equal(t, model.RefundStatusPending, refund.Status)

	clock = clock.Add(time.Hour)
	_, err = r.AppendStatusHistory(refund, model.RefundStatusApproved, "looks good", "lead@example.com")
	require.NoError(t, err)
	assert.Nil(t, refund.CompletedAt)

	clock = clock.Add(time.Hour)
	_, err = r.AppendStatusHistory(refund, model.RefundStatusCompleted, "", "lead@example.com")
	require.NoError(t, err)
	require.NotNil(t, refund.CompletedAt)
	assert.Equal(t, clock, *refund.CompletedAt)

	require.Len(t, refund.StatusHistory, 3)
	first := refund.StatusHistory[0]
	assert.Equal(t, model.RefundStatusPending, first.Status)
	assert.Equal(t, "requested", first.Note)
	assert.Equal(t, "ops@example.com", first.UpdatedBy)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), first.Timestamp)

	_, err = r.AppendStatusHistory(refund, model.RefundStatusRejected, "too late", "lead@example.com")
	requireCode(t, err, CodeInvalidTransition)
	assert.Len(t, refund.StatusHistory, 3)
	assert.Equal(t, model.RefundStatusCompleted, refund.Status)
}

func TestValidateMethod(t *testing.T) {
	assert.NoError(t, ValidateMethod(model.RefundMethodStoreCredit))
	err := ValidateMethod("cash")
	requireCode(t, err, CodeInvalidMethod)
	assert.True(t, IsValidationError(err))
}

func TestApplyOrderStatus(t *testing.T) {
	partial := model.Refund{ID: 1, RefundType: model.RefundTypePartial, Status: model.RefundStatusPending}
	full := model.Refund{ID: 2, RefundType: model.RefundTypeFull, Status: model.RefundStatusApproved}
	rejected := model.Refund{ID: 3, RefundType: model.RefundTypePartial, Status: model.RefundStatusRejected}

	tests := []struct {
		name        string
		order       model.Order
		refunds     []model.Refund
		wantStatus  model.OrderStatus
		wantPre     model.OrderStatus
		wantChanged bool
	}{
		{
			name:        "First partial refund remembers delivered",
			order:       model.Order{Status: model.OrderStatusDelivered},
			refunds:     []model.Refund{partial},
			wantStatus:  model.OrderStatusPartialRefunded,
			wantPre:     model.OrderStatusDelivered,
			wantChanged: true,
		},
		{
			name:        "Full refund closes the order",
			order:       model.Order{Status: model.OrderStatusPaid},
			refunds:     []model.Refund{full},
			wantStatus:  model.OrderStatusRefunded,
			wantPre:     model.OrderStatusPaid,
			wantChanged: true,
		},
		{
			name:        "Second partial keeps the original status",
			order:       model.Order{Status: model.OrderStatusPartialRefunded, PreRefundStatus: model.OrderStatusShipped},
			refunds:     []model.Refund{partial, {ID: 4, RefundType: model.RefundTypePartial, Status: model.RefundStatusCompleted}},
			wantStatus:  model.OrderStatusPartialRefunded,
			wantPre:     model.OrderStatusShipped,
			wantChanged: false,
		},
		{
			name:        "Only rejected refunds revert",
			order:       model.Order{Status: model.OrderStatusPartialRefunded, PreRefundStatus: model.OrderStatusDelivered},
			refunds:     []model.Refund{rejected},
			wantStatus:  model.OrderStatusDelivered,
			wantPre:     "",
			wantChanged: true,
		},
		{
			name:        "No refunds and nothing remembered",
			order:       model.Order{Status: model.OrderStatusDelivered},
			refunds:     nil,
			wantStatus:  model.OrderStatusDelivered,
			wantPre:     "",
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			changed := ApplyOrderStatus(&order, tt.refunds)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, order.Status)
			assert.Equal(t, tt.wantPre, order.PreRefundStatus)
		})
	}
}
