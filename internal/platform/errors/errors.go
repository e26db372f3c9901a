package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConfig     Kind = "config"
	KindValidation Kind = "validation"
	KindUpstream   Kind = "upstream"
	KindGeneration Kind = "generation"
	KindSynthesis  Kind = "synthesis"
	KindRetention  Kind = "retention"
	KindTransport  Kind = "transport"
	KindBootstrap  Kind = "bootstrap"
	KindUnknown    Kind = "unknown"
)

// Public messages returned to HTTP clients.
const (
	MsgAudioFailed = "Failed to generate audio file"
	MsgInternal    = "Internal server error"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap attaches kind and operation context to err. A nil err yields nil and an
// err that already carries an *Error is returned unchanged.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// MessageOf returns the human readable message of the first *Error in the
// chain, or fallback when there is none.
func MessageOf(err error, fallback string) string {
	var target *Error
	if errors.As(err, &target) && target.Message != "" {
		return target.Message
	}
	return fallback
}

// Validation reports a rejected request input. msg is shown to the client.
func Validation(op, msg string) *Error {
	return New(KindValidation, op, msg)
}

// UpstreamStatus reports a non-success status from an external service.
func UpstreamStatus(op string, status int) *Error {
	return New(KindUpstream, op, fmt.Sprintf("unexpected status %d", status))
}

// SynthesisFailed reports that no voice provider produced audio. cause is the
// last provider error and its kind is not propagated.
func SynthesisFailed(op string, cause error) *Error {
	return &Error{
		Kind:    KindSynthesis,
		Op:      op,
		Message: MsgAudioFailed,
		Cause:   cause,
	}
}

// HTTPStatus maps err to the status code and message a client sees.
// Validation errors expose their message; everything else is generic.
func HTTPStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case IsKind(err, KindValidation):
		return http.StatusBadRequest, MessageOf(err, "Invalid request")
	case IsKind(err, KindSynthesis):
		return http.StatusInternalServerError, MsgAudioFailed
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}
