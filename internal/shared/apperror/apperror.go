package apperror

// ErrorCode is a stable, machine-readable error identifier returned to
// API clients. Codes are grouped by prefix: VAL (validation), BIZ
// (business rule), SYS (system).
type ErrorCode string

const (
	// Validation errors (400)
	ErrCodeValidationFailed ErrorCode = "VAL_INVALID_INPUT"
	ErrCodeNoTargets        ErrorCode = "VAL_NO_TARGETS"

	// Business errors
	ErrCodeNotFound          ErrorCode = "BIZ_NOT_FOUND"           // 404
	ErrCodeInactiveOrExpired ErrorCode = "BIZ_INACTIVE_OR_EXPIRED" // 400
	ErrCodeLimitExceeded     ErrorCode = "BIZ_LIMIT_EXCEEDED"      // 400
	ErrCodeOrderConstraint   ErrorCode = "BIZ_ORDER_CONSTRAINT"    // 400
	ErrCodeConflict          ErrorCode = "BIZ_CONFLICT"            // 409

	// System errors (500)
	ErrCodeInternal ErrorCode = "SYS_INTERNAL_ERROR"
)

// AppError is the business-error envelope shared by every domain.
// Storage failures are never wrapped in an AppError; they propagate as
// plain wrapped errors and surface to clients as SYS_INTERNAL_ERROR.
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// WithDetails returns a copy of the error enriched with context for the
// client. The original predefined instance stays untouched so that
// errors.Is comparisons against it keep working.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// Is matches any AppError with the same code, so errors.Is works across
// WithDetails copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidationFailed, Message: message, HTTPStatus: 400}
}

func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message, HTTPStatus: 404}
}

func InactiveOrExpired(message string) *AppError {
	return &AppError{Code: ErrCodeInactiveOrExpired, Message: message, HTTPStatus: 400}
}

func LimitExceeded(message string) *AppError {
	return &AppError{Code: ErrCodeLimitExceeded, Message: message, HTTPStatus: 400}
}

func OrderConstraint(message string) *AppError {
	return &AppError{Code: ErrCodeOrderConstraint, Message: message, HTTPStatus: 400}
}

func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message, HTTPStatus: 409}
}
