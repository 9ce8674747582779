package rpc

import (
	"errors"
	"net/http"

	"sponsorhub/internal/domain"
)

// ErrorKind is the error taxonomy surfaced to every caller, local or remote.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "Unauthenticated"
	KindForbidden       ErrorKind = "Forbidden"
	KindNotFound        ErrorKind = "NotFound"
	KindValidation      ErrorKind = "ValidationError"
	KindConflict        ErrorKind = "Conflict"
	KindInternal        ErrorKind = "Internal"
)

// Error is the typed error payload returned by procedures. Field is set only
// for validation errors and names the offending input field.
// swagger:model RPCError
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return string(e.Kind) + ": " + e.Field + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message
}

// Unauthenticated means no or invalid session; recoverable by signing in.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden means authenticated but not authorized for the target entity.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound covers both absent entities and entities hidden from the caller.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Invalid reports malformed input; field names the offending input field and
// may be empty when the whole payload is malformed.
func Invalid(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// Conflict reports a state collision, e.g. a duplicate racing mutation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal hides the underlying cause from the caller; the cause is logged
// at the router boundary instead.
func Internal() *Error {
	return &Error{Kind: KindInternal, Message: "internal error"}
}

// AsError classifies any error into the taxonomy. Domain sentinels map to
// their kinds; everything unrecognized becomes Internal.
func AsError(err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound),
		errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrSponsorshipNotFound),
		errors.Is(err, domain.ErrMediaNotFound),
		errors.Is(err, domain.ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, domain.ErrCodeInvalid):
		return Invalid("code", domain.ErrCodeInvalid.Error())
	case errors.Is(err, domain.ErrOnboardingIncomplete):
		return Invalid("step", domain.ErrOnboardingIncomplete.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return Invalid("", err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrDuplicateSponsorship),
		errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrAlreadyOnboarded):
		return Conflict(err.Error())
	default:
		return Internal()
	}
}

// HTTPStatus maps the error kind to a transport status code for single-call
// exchanges. Batched exchanges always report per-call errors inline.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
