package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. The admin console maps them to messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED" // login required
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Taxonomy (TAXONOMY_) ====================
	TaxonomyNotFound         = "TAXONOMY_NOT_FOUND"
	TaxonomyMalformed        = "TAXONOMY_MALFORMED"          // all levels EMPTY, or no usable slug
	TaxonomyNonMonotonic     = "TAXONOMY_NON_MONOTONIC"      // level set below an EMPTY one
	TaxonomyParentNotFound   = "TAXONOMY_PARENT_NOT_FOUND"   // no row matches the parent tuple
	TaxonomyAmbiguousParent  = "TAXONOMY_AMBIGUOUS_PARENT"   // several rows match the parent tuple
	TaxonomyMaxDepthExceeded = "TAXONOMY_MAX_DEPTH_EXCEEDED" // parent already at SUBTYP_3
	TaxonomyDuplicateKey     = "TAXONOMY_DUPLICATE_KEY"

	// ==================== Refund (REFUND_) ====================
	// Validation codes come from the refund package (REFUND_AMOUNT_MISMATCH etc).
	RefundNotFound = "REFUND_NOT_FOUND"

	// ==================== Order (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION" // fulfilment only moves forward

	// ==================== Report (REPORT_) ====================
	ReportStorageDisabled = "REPORT_STORAGE_DISABLED"
	ReportUploadFailed    = "REPORT_UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
