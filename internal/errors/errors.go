package errors

import "fmt"

// ErrorCode represents a noteledger error code.
type ErrorCode string

const (
	ErrValidation     ErrorCode = "VALIDATION"      // 422
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"    // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrImportFormat   ErrorCode = "IMPORT_FORMAT"   // 400
	ErrImportFailed   ErrorCode = "IMPORT_FAILED"   // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// LedgerError represents a structured error with code, status, and details.
type LedgerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 422 error for a field-level validation failure.
// The field name is carried in Details so callers can surface per-field messages.
func NewValidation(field, msg string) *LedgerError {
	return &LedgerError{
		Code:    ErrValidation,
		Status:  422,
		Message: fmt.Sprintf("%s %s", field, msg),
		Details: map[string]any{"field": field},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LedgerError {
	return &LedgerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for failed authentication.
// The message is deliberately generic so it cannot be used to probe accounts.
func NewUnauthorized() *LedgerError {
	return &LedgerError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "invalid credentials",
	}
}

// NewNotFound creates a 404 error for a missing row.
// Used both for genuinely absent rows and for rows owned by someone else, so
// the response never reveals whether another owner's data exists.
func NewNotFound(kind string, id any) *LedgerError {
	return &LedgerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %v", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewImportFormat creates a 400 error for a malformed import document.
func NewImportFormat(msg string) *LedgerError {
	return &LedgerError{
		Code:    ErrImportFormat,
		Status:  400,
		Message: msg,
	}
}

// NewImportFailed creates a 500 error for a merge that was rolled back.
// The underlying cause message is surfaced to the caller per the import contract.
func NewImportFailed(err error) *LedgerError {
	msg := "import failed"
	if err != nil {
		msg = fmt.Sprintf("import failed: %s", err.Error())
	}
	return &LedgerError{
		Code:    ErrImportFailed,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LedgerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LedgerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a LedgerError with the given code.
func Is(err error, code ErrorCode) bool {
	if lErr, ok := err.(*LedgerError); ok {
		return lErr.Code == code
	}
	return false
}
