package domain

import "net/http"

// Workflow statuses share their values with the HTTP status codes.
const (
	StatusOK         = http.StatusOK
	StatusCreated    = http.StatusCreated
	StatusBadRequest = http.StatusBadRequest
	StatusForbidden  = http.StatusForbidden
	StatusNotFound   = http.StatusNotFound
)

// Result is the envelope returned by every auth workflow.
// Err is set instead of Value when the outcome is a business error.
type Result[T any] struct {
	Status int
	Value  T
	Err    error
}

// OK builds a successful envelope with the given status.
func OK[T any](status int, value T) Result[T] {
	return Result[T]{Status: status, Value: value}
}

// Fail builds an error envelope.
func Fail[T any](status int, err error) Result[T] {
	return Result[T]{Status: status, Err: err}
}

// Failed reports whether the envelope carries an error.
func (r Result[T]) Failed() bool {
	return r.Err != nil
}
