package services

import (
	"errors"
	"fmt"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
)

// ErrorKind is the stable classification callers branch on.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation_error"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindConflict          ErrorKind = "conflict"
	KindAuthorization     ErrorKind = "authorization_error"
	KindExternalService   ErrorKind = "external_service_error"
	KindInternal          ErrorKind = "internal_error"
)

// Error is a typed service failure. Raw storage or collaborator error
// text is never placed in Message; it travels wrapped in cause.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func External(msg string, cause error) *Error {
	return &Error{Kind: KindExternalService, Message: msg, cause: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// TransitionError reports an illegal status edge with both endpoints so
// the caller can explain the rejection.
type TransitionError struct {
	Current   models.IssueStatus
	Requested models.IssueStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move issue from %q to %q", KindInvalidTransition, e.Current, e.Requested)
}

// Kind extracts the ErrorKind from err, or KindInternal for anything
// unclassified.
func Kind(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	var te *TransitionError
	if errors.As(err, &te) {
		return KindInvalidTransition
	}
	return KindInternal
}

// Public returns the message safe to show callers.
func Public(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	var te *TransitionError
	if errors.As(err, &te) {
		return fmt.Sprintf("cannot move issue from %q to %q", te.Current, te.Requested)
	}
	return "something went wrong"
}
