package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure that crosses a component boundary carries exactly one of them.
var (
	ErrValidation        = errors.New("validation failed")
	ErrMatchQueryFailed  = errors.New("match query failed")
	ErrEnrichmentFailed  = errors.New("enrichment failed")
	ErrRequestSendFailed = errors.New("ride request send failed")
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnavailable       = errors.New("service unavailable")
)

// Error tags an underlying cause with a kind and an optional user-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Kind != nil:
		return e.Kind.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Validation returns an ErrValidation carrying a message meant for the end user.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound with a message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind error, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Message returns the user-facing message of err, or fallback when it has none.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
