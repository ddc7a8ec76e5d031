package desk

import (
	"errors"
	"fmt"

	"github.com/roach88/clinicdesk/internal/access"
	"github.com/roach88/clinicdesk/internal/records"
)

// Error codes reported to the user.
const (
	CodeRequired      = "E_REQUIRED"
	CodeInvalid       = "E_INVALID"
	CodeNotFound      = "E_NOT_FOUND"
	CodeLoginFailed   = "E_LOGIN_FAILED"
	CodeSignupFailed  = "E_SIGNUP_FAILED"
	CodeLoginRequired = "E_LOGIN_REQUIRED"
	CodeDenied        = "E_DENIED"
	CodeBooking       = "E_BOOKING"
	CodeStorage       = "E_STORAGE"
)

// Form messages.
const (
	MsgAllFieldsRequired     = "All fields are required."
	MsgFillRequiredFields    = "Please fill all required fields."
	MsgFillNewPatientDetails = "Please fill all new patient details."
	MsgLoginFailed           = "Invalid username or password."
	MsgSignupFailed          = "Signup failed."
)

// ValidationError rejects form input before any store is touched.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func required(msg string) error {
	return &ValidationError{Code: CodeRequired, Message: msg}
}

func invalid(format string, args ...any) error {
	return &ValidationError{Code: CodeInvalid, Message: fmt.Sprintf(format, args...)}
}

func notFound(kind, ref string) error {
	return &ValidationError{Code: CodeNotFound, Message: fmt.Sprintf("No %s with id %s.", kind, ref)}
}

// RedirectError is returned when route gating sends the user elsewhere.
type RedirectError struct {
	From access.Route
	To   access.Route
}

func (e *RedirectError) Error() string {
	if e.To == access.RouteLogin {
		return "Please log in to continue."
	}
	return fmt.Sprintf("redirected from %s to %s", e.From, e.To)
}

// Code classifies err for display. Unclassified errors are storage or
// internal failures.
func Code(err error) string {
	var ve *ValidationError
	var de *access.DeniedError
	var re *RedirectError
	var be *records.BookingError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Code
	case errors.As(err, &de):
		return CodeDenied
	case errors.As(err, &re):
		return CodeLoginRequired
	case errors.As(err, &be):
		return CodeBooking
	default:
		return CodeStorage
	}
}

// Rejected reports whether err is a user-facing rejection rather than a
// failure of the desk itself.
func Rejected(err error) bool {
	switch Code(err) {
	case "", CodeStorage, CodeBooking:
		return false
	default:
		return true
	}
}
