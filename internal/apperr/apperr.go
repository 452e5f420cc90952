// Package apperr defines the error taxonomy shared by services and handlers.
// Handlers map these to HTTP status codes in one place; services never touch
// status codes directly.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed input: short password, bad email shape,
// missing required field. Maps to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist. Maps to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id of %s", e.Resource, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// NotAuthenticatedError reports a missing, invalid or expired credential, or
// a credential that resolves to no account. Maps to 401. The client-facing
// message is intentionally generic so the failure mode is not leaked.
type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string {
	return "not authorized to access this route"
}

// NotAuthenticated builds a NotAuthenticatedError.
func NotAuthenticated() error {
	return &NotAuthenticatedError{}
}

// ForbiddenError reports a role or ownership denial. Maps to 403 and names
// the denied action.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return "not authorized to " + e.Action
}

// Forbidden builds a ForbiddenError for the named action.
func Forbidden(action string) error {
	return &ForbiddenError{Action: action}
}

// UpstreamError reports a failure in an external collaborator (geocoder,
// file storage). Maps to 500; the underlying cause is logged server-side
// and never sent to the client.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError for the named operation.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// Status maps an error to its HTTP status code. Unknown errors map to 500.
func Status(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		na *NotAuthenticatedError
		fe *ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &na):
		return http.StatusUnauthorized
	case errors.As(err, &fe):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for an error. Server errors get
// a generic message; the real cause stays in the logs.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "server error"
	}
	return err.Error()
}
