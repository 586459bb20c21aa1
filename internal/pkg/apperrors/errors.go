package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Storage-level uniqueness violations. Each one unwraps to ErrResourceAlreadyExists
// so callers that only care about the class can keep using errors.Is.
var (
	ErrEmailAlreadyExists  = &CustomError{Err: ErrResourceAlreadyExists, Message: "Email is already registered"}
	ErrRollNoAlreadyExists = &CustomError{Err: ErrResourceAlreadyExists, Message: "Roll number is already registered"}
	ErrClubNameExists      = &CustomError{Err: ErrResourceAlreadyExists, Message: "A club with this name already exists"}
	ErrAlreadyMember       = &CustomError{Err: ErrResourceAlreadyExists, Message: "You are already enrolled in this club"}
	ErrAlreadyRegistered   = &CustomError{Err: ErrResourceAlreadyExists, Message: "Already registered for this event"}
	ErrRequestPending      = &CustomError{Err: ErrResourceAlreadyExists, Message: "A pending request already exists for this club"}
)

// ErrAlreadyVoted unwraps to ErrBadRequest, not to the conflict class.
var ErrAlreadyVoted = &CustomError{Err: ErrBadRequest, Message: "Already voted"}

// Lookup misses returned by repositories.
var (
	ErrUserNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "User not found"}
	ErrClubNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "Club not found"}
	ErrEventNotFound    = &CustomError{Err: ErrResourceNotFound, Message: "Event not found"}
	ErrPollNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "Poll not found"}
	ErrRequestNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "Request not found"}
	ErrFeedbackNotFound = &CustomError{Err: ErrResourceNotFound, Message: "Feedback not found"}
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewUnauthorizedError creates a new custom error for failed authentication with a message
func NewUnauthorizedError(message string) error {
	return &CustomError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Is reports whether err matches target or any of the errors in errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// IsConflict reports whether err belongs to the conflict class.
func IsConflict(err error) bool {
	return Is(err, ErrConflict, ErrResourceAlreadyExists)
}

// MessageOf returns the human readable message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying details.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}
