package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	EInternal     = "internal error"
	ENotFound     = "not found"
	EConflict     = "conflict"
	EInvalid      = "invalid"
	EForbidden    = "forbidden"
	EUnauthorized = "unauthorized"
)

// Error is the error type returned by every catalog component.
//
// Code targets the API boundary, Msg and Detail are for the caller,
// Op and Err keep the chain for operators.
type Error struct {
	Code   string
	Msg    string
	Op     string
	Err    error
	Detail map[string]any
}

var (
	ErrNotFound     = &Error{Code: ENotFound}
	ErrConflict     = &Error{Code: EConflict}
	ErrInvalid      = &Error{Code: EInvalid}
	ErrInternal     = &Error{Code: EInternal}
	ErrForbidden    = &Error{Code: EForbidden}
	ErrUnauthorized = &Error{Code: EUnauthorized}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "<%s>", e.Code)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so that errors.Is(err, ErrNotFound) works for any
// not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ErrorCode returns the code of the outermost *Error in the chain, or
// EInternal for foreign errors.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		if e.Err != nil {
			return ErrorCode(e.Err)
		}
	}
	return EInternal
}

// ErrorDetail returns the detail map of the outermost *Error in the chain.
func ErrorDetail(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return nil
}

// ErrorMessage returns the caller-facing message for err.
func ErrorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return err.Error()
}

func NotFound(op, msg string, detail map[string]any) *Error {
	return &Error{Code: ENotFound, Op: op, Msg: msg, Detail: detail}
}

func Invalid(op, msg string, detail map[string]any) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: msg, Detail: detail}
}

// Internal wraps an unexpected storage failure, keeping the original cause.
func Internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Msg: "unexpected storage failure", Err: err}
}

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}
