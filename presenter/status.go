package presenter

import (
	"errors"

	"github.com/tfkr-ae/launchbook/domain"
)

// Status is the content state of a screen. It is exactly one of Idle, Loading,
// Failed or Loaded of the same T.
type Status[T any] interface {
	isStatus(T)
}

// Idle means nothing was requested yet.
type Idle[T any] struct{}

// Loading means a request is in flight.
type Loading[T any] struct{}

// Failed carries the message of the last failed request.
type Failed[T any] struct {
	Message string
}

// Loaded carries the result of the last successful request.
type Loaded[T any] struct {
	Value T
}

func (Idle[T]) isStatus(T)    {}
func (Loading[T]) isStatus(T) {}
func (Failed[T]) isStatus(T)  {}
func (Loaded[T]) isStatus(T)  {}

// ValueOf returns the loaded value, if any.
func ValueOf[T any](status Status[T]) (T, bool) {
	if loaded, ok := status.(Loaded[T]); ok {
		return loaded.Value, true
	}
	var zero T
	return zero, false
}

// MessageOf returns the failure message, or "" when status is not Failed.
func MessageOf[T any](status Status[T]) string {
	if failed, ok := status.(Failed[T]); ok {
		return failed.Message
	}
	return ""
}

// IsLoading reports whether status is Loading.
func IsLoading[T any](status Status[T]) bool {
	_, ok := status.(Loading[T])
	return ok
}

// ErrorMessage returns err's message, or fallback when err has none.
// A *domain.Error without a message or cause counts as having none.
func ErrorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Message == "" && domainErr.Err == nil {
		return fallback
	}
	return err.Error()
}
