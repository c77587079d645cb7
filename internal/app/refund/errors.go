package refund

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrRefundNotFound = errors.New("refund not found")
)

// Validation error codes.
const (
	CodeFullAfterPartial  = "REFUND_FULL_AFTER_PARTIAL"
	CodeAmountMismatch    = "REFUND_AMOUNT_MISMATCH"
	CodeAmountExceeds     = "REFUND_AMOUNT_EXCEEDS_REMAINING"
	CodeNegativeAmount    = "REFUND_NEGATIVE_AMOUNT"
	CodeInvalidType       = "REFUND_INVALID_TYPE"
	CodeInvalidMethod     = "REFUND_INVALID_METHOD"
	CodeInvalidTransition = "REFUND_INVALID_TRANSITION"
	CodeNotEditable       = "REFUND_NOT_EDITABLE"
)

// ValidationError is a refund request rejected against the order's state.
// Message is safe to show to the admin user as is.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
