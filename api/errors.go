// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error code helpers for hioload-aio.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Common errors used across the library.
var (
	ErrLoopClosed             = errors.New("reactor loop is closed")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrRequestBusy            = errors.New("request already in flight")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Negative result codes produced by the reactor. They follow the OS write()
// convention: -errno.
var (
	CodeIO       = -int(syscall.EIO)
	CodeBadFd    = -int(syscall.EBADF)
	CodeInval    = -int(syscall.EINVAL)
	CodeNoSys    = -int(syscall.ENOSYS)
	CodeCanceled = -int(syscall.ECANCELED)
)

// IOError is the asynchronous failure of a completed request.
type IOError struct {
	Op   string
	Code int
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Op, describe(e.Code), e.Code)
}

// Unwrap exposes the errno so errors.Is(err, syscall.EIO) works.
func (e *IOError) Unwrap() error {
	if e.Code >= 0 {
		return nil
	}
	return syscall.Errno(-e.Code)
}

// SubmissionError is a synchronous rejection of a request by the reactor.
type SubmissionError struct {
	Op   string
	Code int
	Err  error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s rejected: %v (code %d)", e.Op, e.Err, e.Code)
	}
	return fmt.Sprintf("%s rejected: %s (code %d)", e.Op, describe(e.Code), e.Code)
}

// Unwrap returns the cause of the rejection.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a rejection for op with the given cause.
func NewSubmissionError(op string, code int, cause error) *SubmissionError {
	return &SubmissionError{Op: op, Code: code, Err: cause}
}

// CodeOf converts err into the negative code convention. A nil error maps to 0,
// unknown errors map to CodeIO.
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return ioErr.Code
	}
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Code
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return CodeIO
}

func describe(code int) string {
	if code >= 0 {
		return "no error"
	}
	return syscall.Errno(-code).Error()
}
