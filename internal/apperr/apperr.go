// Package apperr classifies failures into expected conditions (bad input,
// missing credentials, unusable model output) and unexpected ones.
package apperr

import (
	"errors"
	"fmt"
)

// Kind separates errors the caller can act on from internal failures
type Kind int

const (
	Unexpected Kind = iota
	Expected
)

// Error is a classified application error
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind and message so that wrapped copies
// created with Wrap still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg && t.Op == ""
}

var (
	ErrNoProvider         = &Error{Kind: Expected, Msg: "no generation provider configured"}
	ErrUnparseable        = &Error{Kind: Expected, Msg: "could not interpret model response"}
	ErrEmptyResponse      = &Error{Kind: Expected, Msg: "model returned an empty response"}
	ErrInvalidInput       = &Error{Kind: Expected, Msg: "invalid input"}
	ErrAllProvidersFailed = &Error{Kind: Unexpected, Msg: "all generation providers failed"}
)

// Wrap attaches an operation name and cause to a sentinel
func Wrap(sentinel *Error, op string, err error) error {
	return &Error{Kind: sentinel.Kind, Op: op, Msg: sentinel.Msg, Err: err}
}

// Invalid returns an expected error describing bad caller input
func Invalid(format string, args ...any) error {
	return &Error{Kind: Expected, Msg: ErrInvalidInput.Msg, Err: fmt.Errorf(format, args...)}
}

// IsExpected reports whether err (or anything it wraps) is an expected error
func IsExpected(err error) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Kind == Expected {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}
