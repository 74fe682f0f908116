package aqerr

import (
	"errors"
	"fmt"
)

// Code represents a stable error category that callers can switch on.
type Code string

const (
	CodeUnknown          Code = "unknown"
	CodeUnauthorized     Code = "unauthorized"
	CodeRefreshFailed    Code = "refresh_failed"
	CodeTransport        Code = "transport"
	CodeValidation       Code = "validation"
	CodeUnexpectedStatus Code = "unexpected_status"
	CodeStore            Code = "store"
)

// Error is a simple value type that carries a Code plus the underlying error.
type Error struct {
	Code Code
	err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// New wraps an error with the provided code. If err is nil a nil is returned.
func New(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, err: err}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, err: fmt.Errorf(format, args...)}
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		err = e.err
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
