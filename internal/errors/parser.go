package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ikkim/shopadmin-backend/internal/app/refund"
	"github.com/ikkim/shopadmin-backend/internal/app/taxonomy"
	"gorm.io/gorm"
)

// ErrorInfo is the user-facing form of an error.
type ErrorInfo struct {
	Code    string // see codes.go
	Message string // safe to show to the user
	Status  int    // HTTP status
}

var integrityCodes = map[taxonomy.IntegrityKind]string{
	taxonomy.KindMalformed:        TaxonomyMalformed,
	taxonomy.KindNonMonotonic:     TaxonomyNonMonotonic,
	taxonomy.KindParentNotFound:   TaxonomyParentNotFound,
	taxonomy.KindAmbiguousParent:  TaxonomyAmbiguousParent,
	taxonomy.KindMaxDepthExceeded: TaxonomyMaxDepthExceeded,
	taxonomy.KindDuplicateKey:     TaxonomyDuplicateKey,
}

// ParseError converts err into a code and message the admin console can show.
// Domain errors keep their own message; storage errors are translated and
// never leak SQL text.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
			Status:  http.StatusInternalServerError,
		}
	}

	// 1. Domain errors
	var integrity *taxonomy.IntegrityError
	if errors.As(err, &integrity) {
		return ErrorInfo{
			Code:    integrityCodes[integrity.Kind],
			Message: integrity.Error(),
			Status:  http.StatusUnprocessableEntity,
		}
	}

	var validation *refund.ValidationError
	if errors.As(err, &validation) {
		return ErrorInfo{Code: validation.Code, Message: validation.Message, Status: http.StatusBadRequest}
	}

	switch {
	case errors.Is(err, taxonomy.ErrNodeNotFound):
		return ErrorInfo{Code: TaxonomyNotFound, Message: "Taxonomy node not found", Status: http.StatusNotFound}
	case errors.Is(err, refund.ErrOrderNotFound):
		return ErrorInfo{Code: OrderNotFound, Message: "Order not found", Status: http.StatusNotFound}
	case errors.Is(err, refund.ErrRefundNotFound):
		return ErrorInfo{Code: RefundNotFound, Message: "Refund not found", Status: http.StatusNotFound}
	}

	// 2. GORM
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
			Status:  http.StatusNotFound,
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 3. PostgreSQL / SQLite constraint errors

	// 3-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 3-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}

	// 3-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing", Status: http.StatusBadRequest}
	}

	// 3-4. Check constraint violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input value", Status: http.StatusBadRequest}
	}

	// 4. Network / connection
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Failed to reach an upstream service. Please try again later",
			Status:  http.StatusBadGateway,
		}
	}

	// 5. Fallback
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
		Status:  http.StatusInternalServerError,
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "order_number") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Order number is already in use", Status: http.StatusConflict}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "The record already exists", Status: http.StatusConflict}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The record is still referenced by other data and cannot be deleted",
			Status:  http.StatusConflict,
		}
	}
	if strings.Contains(errLower, "order_id") {
		return ErrorInfo{Code: OrderNotFound, Message: "Order not found", Status: http.StatusNotFound}
	}
	if strings.Contains(errLower, "taxonomy_node_id") {
		return ErrorInfo{Code: TaxonomyNotFound, Message: "Taxonomy node not found", Status: http.StatusNotFound}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record not found", Status: http.StatusNotFound}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "refund"):
		return "Refund not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "taxonomy"):
		return "Taxonomy node not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	}
	return "The requested record was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create the record. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the record. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete the record. Please try again later"
	case strings.Contains(contextLower, "report"):
		return "Failed to build the report. Please try again later"
	}
	return "An internal error occurred. Please try again later"
}

// ParseAndRespond writes the parsed error with its own status code.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(errorInfo.Status, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
