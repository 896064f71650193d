package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrNotAuthenticated   = errors.New("authentication required")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("a user with this username already exists")
	ErrEmailAlreadyExists    = errors.New("a user with this email already exists")
)

// Student errors
var (
	ErrStudentNotFound               = errors.New("student not found")
	ErrEnrollmentNumberAlreadyExists = errors.New("a student with this enrollment number already exists")
)

// Subject errors
var (
	ErrSubjectNotFound          = errors.New("subject not found")
	ErrSubjectNameAlreadyExists = errors.New("a subject with this name already exists")
	ErrSubjectCodeAlreadyExists = errors.New("a subject with this code already exists")
)

// Enrollment errors
var (
	ErrEnrollmentNotFound      = errors.New("enrollment not found")
	ErrAlreadyEnrolled         = errors.New("student is already enrolled in this subject")
	ErrNotEnrolled             = errors.New("student is not enrolled in this subject")
	ErrInvalidStatusTransition = errors.New("invalid enrollment status transition")
)

// Face recognition errors
var (
	ErrFaceRecognitionNotConfigured = errors.New("face recognition is not configured")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
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

// NewValidationError creates a new custom error for invalid form input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
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

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
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

// UserMessage returns the text shown to the user for err.
// Wrapped context added by services is stripped so only the
// sentinel or custom message reaches the page.
func UserMessage(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return capitalize(known.Error())
		}
	}
	return "An unexpected error occurred. Please try again."
}

var userFacing = []error{
	ErrInvalidCredentials,
	ErrTooManyAttempts,
	ErrPermissionDenied,
	ErrUsernameAlreadyExists,
	ErrEmailAlreadyExists,
	ErrEnrollmentNumberAlreadyExists,
	ErrSubjectNameAlreadyExists,
	ErrSubjectCodeAlreadyExists,
	ErrAlreadyEnrolled,
	ErrNotEnrolled,
	ErrInvalidStatusTransition,
	ErrFaceRecognitionNotConfigured,
	ErrUserNotFound,
	ErrStudentNotFound,
	ErrSubjectNotFound,
	ErrEnrollmentNotFound,
	ErrResourceNotFound,
	ErrValidationFailed,
	ErrBadRequest,
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b) + "."
}
