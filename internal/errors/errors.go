package errors

import (
	"errors"
	"fmt"
)

// Code classifies a CLI failure. Every code exits the process with status 1;
// the code only drives how the failure is labelled when rendered.
type Code int

const (
	CodeSuccess   Code = 0
	CodeInternal  Code = 1
	CodeUsage     Code = 2
	CodeConfig    Code = 3
	CodeTransport Code = 10
	CodeServer    Code = 11
	CodeDecode    Code = 12
	CodeNotReady  Code = 13
	CodeAborted   Code = 14
)

// Error is a typed CLI error. HTTPStatus is set for server-reported failures.
type Error struct {
	Code       Code
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.HTTPStatus > 0 {
		msg = fmt.Sprintf("HTTP %d: %s", e.HTTPStatus, e.Message)
	}
	if e.Cause == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Server builds the error for a non-2xx response outside the allowed set.
func Server(status int, message string) *Error {
	return &Error{Code: CodeServer, Message: message, HTTPStatus: status}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func Is(err error, code Code) bool {
	cliErr, ok := As(err)
	return ok && cliErr.Code == code
}

func (c Code) Type() string {
	switch c {
	case CodeUsage:
		return "usage_error"
	case CodeConfig:
		return "config_error"
	case CodeTransport:
		return "transport_error"
	case CodeServer:
		return "server_error"
	case CodeDecode:
		return "decode_error"
	case CodeNotReady:
		return "not_ready"
	case CodeAborted:
		return "aborted"
	default:
		return "internal_error"
	}
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	return 1
}
