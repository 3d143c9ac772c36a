package domain

import "fmt"

// Code classifies an expected business failure.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeDuplicateKey      Code = "DUPLICATE_KEY"
	CodeInvalidState      Code = "INVALID_STATE"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeItemNotFound      Code = "ITEM_NOT_FOUND"
	CodeValidationFailed  Code = "VALIDATION_FAILED"
)

// Failure carries the code/message pair of an expected business failure.
// Unexpected faults (store unreachable, serialization errors) never travel
// as a Failure; they use the plain error path.
type Failure struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// NewFailure creates a Failure with the given code and message.
func NewFailure(code Code, message string) *Failure {
	return &Failure{Code: code, Message: message}
}

// Failuref creates a Failure with a formatted message.
func Failuref(code Code, format string, args ...interface{}) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Void is the value type of results that carry no payload.
type Void struct{}

// Result is a discriminated outcome: a success optionally carrying a value,
// or a Failure. It replaces exceptions for expected business outcomes.
type Result[T any] struct {
	value   T
	failure *Failure
}

// OK wraps a successful value.
func OK[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// OKVoid is a successful Result carrying no value.
func OKVoid() Result[Void] {
	return Result[Void]{}
}

// Fail wraps an existing Failure.
func Fail[T any](f *Failure) Result[T] {
	return Result[T]{failure: f}
}

// Failf builds a failed Result with a formatted message.
func Failf[T any](code Code, format string, args ...interface{}) Result[T] {
	return Result[T]{failure: Failuref(code, format, args...)}
}

// IsOK reports whether the result is a success.
func (r Result[T]) IsOK() bool {
	return r.failure == nil
}

// Value returns the success value; zero value if the result is a failure.
func (r Result[T]) Value() T {
	return r.value
}

// Failure returns the failure, or nil on success.
func (r Result[T]) Failure() *Failure {
	return r.failure
}
