// Package resource provides the tri-state result envelope returned by every
// asynchronous engine operation.
//
// A stream always starts with Loading(true), carries either one Success or
// one or more Error values, and ends with Loading(false) before the channel
// is closed.
package resource

import (
	"context"
	"errors"
	"fmt"
)

// State tags a Resource.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Kind classifies an Error resource.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNotFound
	KindUpstream
	KindStorage
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_error"
	case KindStorage:
		return "storage_error"
	case KindParse:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Resource is one value of an operation stream.
type Resource[T any] struct {
	State   State
	Active  bool // meaningful for StateLoading only
	Value   T
	Kind    Kind
	Message string
}

func Loading[T any](active bool) Resource[T] {
	return Resource[T]{State: StateLoading, Active: active}
}

func Success[T any](v T) Resource[T] {
	return Resource[T]{State: StateSuccess, Value: v}
}

func Error[T any](kind Kind, msg string) Resource[T] {
	return Resource[T]{State: StateError, Kind: kind, Message: msg}
}

// FromError builds an Error resource, classifying err with KindOf.
func FromError[T any](err error) Resource[T] {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Error[T](KindOf(err), msg)
}

// kinded is implemented by errors that know their Kind.
type kinded interface {
	ResourceKind() Kind
}

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string      { return e.err.Error() }
func (e *kindError) Unwrap() error      { return e.err }
func (e *kindError) ResourceKind() Kind { return e.kind }

// Wrap tags err with kind. Wrap(k, nil) returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// KindOf reports the Kind of err. Deadline errors are timeouts.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var k kinded
	if errors.As(err, &k) {
		return k.ResourceKind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Failure is the error returned by Collect when a stream carried no Success.
type Failure struct {
	Kind     Kind
	Message  string
	Messages []string // every Error message, in order
}

func (f *Failure) Error() string      { return f.Message }
func (f *Failure) ResourceKind() Kind { return f.Kind }

// ErrNoResult is returned by Collect when a stream closed without a Success
// or Error value.
var ErrNoResult = errors.New("stream ended without a result")
