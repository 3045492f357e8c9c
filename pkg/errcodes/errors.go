// Package errcodes defines the client-facing errors returned by handlers and
// services, and the Echo error handler that renders them.
package errcodes

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error is a failure that is safe to show to API clients. Code is a stable
// snake_case identifier and HTTPCode the status it is rendered with.
type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

// Is matches another *Error with the same status, code and message.
func (err *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && *other == *err
}

func newError(status int, code, msg string) error {
	return &Error{HTTPCode: status, Message: msg, Code: code}
}

// CodeOf returns the Code of the first *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NotAuthenticated is returned when a request's identity can't be resolved
// to a user.
func NotAuthenticated(msg string) error {
	return newError(http.StatusUnauthorized, "not_authenticated", msg)
}

// Forbidden is returned when the caller may not perform action.
func Forbidden(action string) error {
	return newError(http.StatusForbidden, "forbidden", action+" is not allowed.")
}

// NotFound is returned when resource does not exist, or is not visible to
// the caller.
func NotFound(resource string) error {
	return newError(http.StatusNotFound, "not_found", resource+" not found.")
}

// Conflict covers uniqueness violations and reconciliation contention.
func Conflict(msg string) error {
	return newError(http.StatusConflict, "conflict", msg)
}

func PayloadTooLarge(msg string) error {
	return newError(http.StatusRequestEntityTooLarge, "payload_too_large", msg)
}

func UnsupportedMediaType() error {
	return newError(http.StatusUnsupportedMediaType, "unsupported_media_type", "Unsupported Media Type")
}

func UnknownParameter(param string) error {
	return newError(http.StatusUnprocessableEntity, "unknown_parameter", fmt.Sprintf("Unknown Parameter %q", param))
}

func ValidationTypeError(msg string) error {
	return newError(http.StatusUnprocessableEntity, "validation_type_error", msg)
}

func ValidationError(msg string) error {
	return newError(http.StatusUnprocessableEntity, "validation_error", msg)
}

func MalformedPayload() error {
	return newError(http.StatusBadRequest, "malformed_payload", "Malformed Payload")
}

func EmptyRequestBody() error {
	return newError(http.StatusBadRequest, "empty_request_body", "Request body can't be empty.")
}

// ServiceUnavailable is returned when an optional backend, such as token
// signing or blob storage, isn't configured.
func ServiceUnavailable(msg string) error {
	return newError(http.StatusServiceUnavailable, "service_unavailable", msg)
}
