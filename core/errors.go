package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind groups application errors; it prefixes every rendered message.
type ErrorKind string

const (
	KindAuthorization ErrorKind = "Authorization Error"
	KindInvalidData   ErrorKind = "Invalid Data Error"
	KindBadRequest    ErrorKind = "Bad Request Error"
)

// Error is an application error bound to an HTTP status.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Details interface{}
}

var (
	ErrUnauthorizedToken = &Error{KindAuthorization, "Missing access token. You must login first.", http.StatusUnauthorized, nil}
	ErrExpiredToken      = &Error{KindAuthorization, "Expired token. Please login again.", http.StatusUnauthorized, nil}
	ErrInvalidToken      = &Error{KindAuthorization, "Invalid token.", http.StatusUnauthorized, nil}
	ErrRevokedToken      = &Error{KindAuthorization, "Revoked token. Please login again.", http.StatusUnauthorized, nil}
	ErrPermissionDenied  = &Error{KindAuthorization, "Permission Denied.", http.StatusForbidden, nil}
	ErrEmailNotFound     = &Error{KindInvalidData, "Email not found", http.StatusNotFound, nil}
	ErrInvalidPassword   = &Error{KindInvalidData, "Incorrect password", http.StatusBadRequest, nil}
	ErrInvalidData       = &Error{KindInvalidData, "Error while loading data.", http.StatusBadRequest, nil}
	ErrUserAlreadyExists = &Error{KindInvalidData, "User already exists.", http.StatusBadRequest, nil}
	ErrEntityNotFound    = &Error{KindBadRequest, "Entity not found.", http.StatusNotFound, nil}
	ErrEmptyBody         = &Error{KindInvalidData, "Body should not be empty", http.StatusBadRequest, nil}
	ErrAdminDeletion     = &Error{KindInvalidData, "Admin user can't be deleted.", http.StatusConflict, nil}
	ErrTooManyRequests   = &Error{KindBadRequest, "Too many requests.", http.StatusTooManyRequests, nil}
)

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Is matches errors of the same kind, message and status, whatever their details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message && e.Status == t.Status
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// NewInvalidDataError returns an invalid data error (400) with a custom message.
func NewInvalidDataError(msg string) *Error {
	return &Error{Kind: KindInvalidData, Message: msg, Status: http.StatusBadRequest}
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	if err.Fields == nil {
		return nil
	}
	flds := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		flds[fErr.Field] = fErr.Error
	}
	return flds
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
